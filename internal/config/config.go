package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// VideoIDPlaceholder is substituted with each record's video id when a video
// path template is expanded.
const VideoIDPlaceholder = "{video_id}"

// Paths contains input and output locations.
type Paths struct {
	SourceRoot      string `toml:"source_root"`
	AnnotationsFile string `toml:"annotations_file"`
	DatasetRoot     string `toml:"dataset_root"`
	LogDir          string `toml:"log_dir"`
}

// Video contains configuration for locating and decoding source videos.
type Video struct {
	// PathTemplate is resolved relative to Paths.SourceRoot unless absolute.
	PathTemplate  string `toml:"path_template"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// DecodeTimeout bounds a single frame decode, in seconds.
	DecodeTimeout int `toml:"decode_timeout"`
}

// Sampling contains the frame selection and train/val split parameters.
type Sampling struct {
	Stride     int     `toml:"stride"`
	Seed       int64   `toml:"seed"`
	SplitRatio float64 `toml:"split_ratio"`
}

// Dataset contains configuration for the materialized dataset.
type Dataset struct {
	DescriptorName string `toml:"descriptor_name"`
	ClassName      string `toml:"class_name"`
	ImageFormat    string `toml:"image_format"`
	JPEGQuality    int    `toml:"jpeg_quality"`
}

// Manifest contains configuration for the SQLite provenance manifest.
type Manifest struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <dataset_root>/manifest.db
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidset.
//
// Configuration sections by subsystem:
//   - Paths: annotation file, video source root, dataset root, log directory
//   - Video: video path template and ffmpeg/ffprobe settings
//   - Sampling: stride, shuffle seed, split ratio
//   - Dataset: descriptor name, class name, image encoding
//   - Manifest: SQLite record of every written sample
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Video    Video    `toml:"video"`
	Sampling Sampling `toml:"sampling"`
	Dataset  Dataset  `toml:"dataset"`
	Manifest Manifest `toml:"manifest"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidset/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidset.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory when one is configured. Dataset
// directories are created by the dataset package once a run starts.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to decode frames.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Video.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used to read video dimensions.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Video.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// ManifestPath returns the manifest database location.
func (c *Config) ManifestPath() string {
	if p := strings.TrimSpace(c.Manifest.Path); p != "" {
		return p
	}
	return filepath.Join(c.Paths.DatasetRoot, defaultManifestName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
