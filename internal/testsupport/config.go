package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidset/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceRoot = filepath.Join(base, "train")
	cfgVal.Paths.AnnotationsFile = filepath.Join(base, "train", "annotations", "annotations.json")
	cfgVal.Paths.DatasetRoot = filepath.Join(base, "datasets", "drone")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Manifest.Path = ""
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStride overrides the sampling stride on the test config.
func WithStride(stride int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sampling.Stride = stride
	}
}

// WithManifest toggles the SQLite manifest on the test config.
func WithManifest(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = enabled
	}
}

// WithImageFormat overrides the dataset image encoding.
func WithImageFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.ImageFormat = format
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		PrependPath(b.t, binDir)
	}
}

// WithMediaStubs installs ffprobe and ffmpeg stubs that report a width x
// height video and emit a PNG frame of that size. See MediaStubs.
func WithMediaStubs(width, height int, failingFrames ...int) ConfigOption {
	return func(b *configBuilder) {
		ffmpeg, ffprobe := MediaStubs(b.t, filepath.Join(b.baseDir, "bin"), width, height, failingFrames...)
		b.cfg.Video.FFmpegBinary = ffmpeg
		b.cfg.Video.FFprobeBinary = ffprobe
	}
}

// PrependPath puts dir at the front of PATH for the duration of the test.
func PrependPath(t testing.TB, dir string) {
	t.Helper()
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceRoot)
}
