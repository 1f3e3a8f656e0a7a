package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeDataset()
	if err := c.normalizeManifest(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("VIDSET_SOURCE_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.SourceRoot = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VIDSET_DATASET_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DatasetRoot = strings.TrimSpace(value)
	}

	var err error
	if strings.TrimSpace(c.Paths.SourceRoot) == "" {
		c.Paths.SourceRoot = defaultSourceRoot
	}
	if c.Paths.SourceRoot, err = expandPath(c.Paths.SourceRoot); err != nil {
		return fmt.Errorf("paths.source_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.AnnotationsFile) == "" {
		c.Paths.AnnotationsFile = defaultAnnotationsFile
	}
	if c.Paths.AnnotationsFile, err = expandPath(c.Paths.AnnotationsFile); err != nil {
		return fmt.Errorf("paths.annotations_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatasetRoot) == "" {
		c.Paths.DatasetRoot = defaultDatasetRoot
	}
	if c.Paths.DatasetRoot, err = expandPath(c.Paths.DatasetRoot); err != nil {
		return fmt.Errorf("paths.dataset_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.PathTemplate = strings.TrimSpace(c.Video.PathTemplate)
	if c.Video.PathTemplate == "" {
		c.Video.PathTemplate = defaultVideoTemplate
	}
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.DecodeTimeout == 0 {
		c.Video.DecodeTimeout = defaultDecodeTimeout
	}
}

func (c *Config) normalizeDataset() {
	c.Dataset.DescriptorName = strings.TrimSpace(c.Dataset.DescriptorName)
	if c.Dataset.DescriptorName == "" {
		c.Dataset.DescriptorName = defaultDescriptorName
	}
	c.Dataset.ClassName = strings.TrimSpace(c.Dataset.ClassName)
	if c.Dataset.ClassName == "" {
		c.Dataset.ClassName = defaultClassName
	}
	c.Dataset.ImageFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Dataset.ImageFormat), "."))
	switch c.Dataset.ImageFormat {
	case "":
		c.Dataset.ImageFormat = defaultImageFormat
	case "jpeg":
		c.Dataset.ImageFormat = "jpg"
	}
	if c.Dataset.JPEGQuality == 0 {
		c.Dataset.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeManifest() error {
	path := strings.TrimSpace(c.Manifest.Path)
	if path == "" {
		c.Manifest.Path = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	c.Manifest.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json", "color":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
