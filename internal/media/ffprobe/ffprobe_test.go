package ffprobe

import (
	"errors"
	"math"
	"testing"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080,
     "pix_fmt": "yuv420p", "nb_frames": "750", "r_frame_rate": "30000/1001"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio"},
    {"index": 2, "codec_name": "mjpeg", "codec_type": "video", "width": 300, "height": 300, "nb_frames": "1"}
  ],
  "format": {"filename": "drone_video.mp4", "nb_streams": 3, "duration": "25.025", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseFirstVideo(t *testing.T) {
	result, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected cover art to be excluded, got %d video streams", result.VideoStreamCount())
	}
	stream, err := result.FirstVideo()
	if err != nil {
		t.Fatalf("FirstVideo: %v", err)
	}
	if stream.Width != 1920 || stream.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", stream.Width, stream.Height)
	}
	if stream.FrameCount() != 750 {
		t.Fatalf("unexpected frame count %d", stream.FrameCount())
	}
	if rate := stream.FrameRate(); math.Abs(rate-29.97) > 0.01 {
		t.Fatalf("unexpected frame rate %v", rate)
	}
	if result.DurationSeconds() != 25.025 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestFirstVideoMissing(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if _, err := result.FirstVideo(); !errors.Is(err, ErrNoVideoStream) {
		t.Fatalf("expected ErrNoVideoStream, got %v", err)
	}
}

func TestStreamHelpersHandleInvalidNumbers(t *testing.T) {
	stream := Stream{NBFrames: "N/A", RFrameRate: "0/0"}
	if stream.FrameCount() != 0 {
		t.Fatalf("expected frame count 0, got %d", stream.FrameCount())
	}
	if stream.FrameRate() != 0 {
		t.Fatalf("expected frame rate 0, got %v", stream.FrameRate())
	}
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
}

func TestConstantFrameRate(t *testing.T) {
	tests := []struct {
		name   string
		stream Stream
		want   float64
		ok     bool
	}{
		{"matching rates", Stream{RFrameRate: "25/1", AvgFrameRate: "25/1"}, 25, true},
		{"ntsc rounding", Stream{RFrameRate: "30000/1001", AvgFrameRate: "2997/100"}, 30000.0 / 1001, true},
		{"missing average", Stream{RFrameRate: "60/1", AvgFrameRate: "0/0"}, 60, true},
		{"variable rate", Stream{RFrameRate: "30/1", AvgFrameRate: "24000/1001"}, 0, false},
		{"unknown rate", Stream{RFrameRate: "0/0"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.stream.ConstantFrameRate()
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ConstantFrameRate() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
