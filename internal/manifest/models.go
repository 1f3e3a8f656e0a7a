package manifest

import "time"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Failure kinds.
const (
	KindVideo = "video"
	KindFrame = "frame"
)

// RunInfo describes the inputs of a build run.
type RunInfo struct {
	ID              string
	AnnotationsPath string
	SourceRoot      string
	DatasetRoot     string
	Stride          int
	Seed            int64
	SplitRatio      float64
}

// Run is a stored run row.
type Run struct {
	RunInfo
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Train        int
	Val          int
	VideoErrors  int
	FrameErrors  int
	ErrorMessage string
}

// SampleRecord is a stored sample row.
type SampleRecord struct {
	Split    string
	SampleID int
	VideoID  string
	Frame    int
	Label    string
}

// FailureRecord is a stored failure row. Frame is -1 for video failures.
type FailureRecord struct {
	Kind    string
	VideoID string
	Frame   int
	Message string
}

// FrameRef identifies one source frame.
type FrameRef struct {
	VideoID string
	Frame   int
}
