package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// MediaRequirements returns the ffmpeg and ffprobe requirements for the
// configured binaries.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Decodes sampled frames",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
		{
			Name:        "FFprobe",
			Command:     ResolveFFprobe(ffmpegBinary, ffprobeBinary),
			Description: "Reads video dimensions",
			VersionArgs: []string{"-hide_banner", "-version"},
		},
	}
}

// ResolveFFprobe picks the ffprobe binary to run. An explicitly configured
// binary other than the bare "ffprobe" name wins. Otherwise an ffprobe that
// sits next to a resolvable ffmpeg is preferred so both tools come from the
// same build, falling back to the configured name.
func ResolveFFprobe(ffmpegBinary, ffprobeBinary string) string {
	configured := strings.TrimSpace(ffprobeBinary)
	if configured == "" {
		configured = "ffprobe"
	}
	if configured != "ffprobe" {
		return configured
	}
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		return configured
	}
	resolved, err := exec.LookPath(ffmpegBinary)
	if err != nil {
		return configured
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
	if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
		return candidate
	}
	return configured
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
