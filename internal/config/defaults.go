package config

const (
	defaultSourceRoot      = "train"
	defaultAnnotationsFile = "train/annotations/annotations.json"
	defaultDatasetRoot     = "datasets/drone"
	defaultVideoTemplate   = "samples/" + VideoIDPlaceholder + "/drone_video.mp4"
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultDecodeTimeout   = 60
	defaultStride          = 7
	defaultSeed            = 42
	defaultSplitRatio      = 0.80
	defaultDescriptorName  = "drone.yaml"
	defaultClassName       = "object"
	defaultImageFormat     = "jpg"
	defaultJPEGQuality     = 95
	defaultManifestName    = "manifest.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceRoot:      defaultSourceRoot,
			AnnotationsFile: defaultAnnotationsFile,
			DatasetRoot:     defaultDatasetRoot,
		},
		Video: Video{
			PathTemplate:  defaultVideoTemplate,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			DecodeTimeout: defaultDecodeTimeout,
		},
		Sampling: Sampling{
			Stride:     defaultStride,
			Seed:       defaultSeed,
			SplitRatio: defaultSplitRatio,
		},
		Dataset: Dataset{
			DescriptorName: defaultDescriptorName,
			ClassName:      defaultClassName,
			ImageFormat:    defaultImageFormat,
			JPEGQuality:    defaultJPEGQuality,
		},
		Manifest: Manifest{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
