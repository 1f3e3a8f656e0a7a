package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.AnnotationsFile) == "" {
		return errors.New("paths.annotations_file must be set")
	}
	if strings.TrimSpace(c.Paths.DatasetRoot) == "" {
		return errors.New("paths.dataset_root must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if !strings.Contains(c.Video.PathTemplate, VideoIDPlaceholder) {
		return fmt.Errorf("video.path_template must contain %s", VideoIDPlaceholder)
	}
	if c.Video.DecodeTimeout <= 0 {
		return errors.New("video.decode_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateSampling() error {
	if c.Sampling.Stride < 1 {
		return errors.New("sampling.stride must be >= 1")
	}
	r := c.Sampling.SplitRatio
	if math.IsNaN(r) || r <= 0 || r >= 1 {
		return errors.New("sampling.split_ratio must be between 0 and 1 (exclusive)")
	}
	return nil
}

func (c *Config) validateDataset() error {
	switch c.Dataset.ImageFormat {
	case "jpg", "png":
	default:
		return fmt.Errorf("dataset.image_format: unsupported value %q (use jpg or png)", c.Dataset.ImageFormat)
	}
	if c.Dataset.JPEGQuality < 1 || c.Dataset.JPEGQuality > 100 {
		return errors.New("dataset.jpeg_quality must be between 1 and 100")
	}
	if c.Dataset.ClassName == "" {
		return errors.New("dataset.class_name must be set")
	}
	if strings.ContainsAny(c.Dataset.DescriptorName, `/\`) {
		return errors.New("dataset.descriptor_name must be a file name, not a path")
	}
	return nil
}
