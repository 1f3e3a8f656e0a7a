package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidset/internal/annotations"
	"vidset/internal/config"
	"vidset/internal/dataset"
	"vidset/internal/deps"
	"vidset/internal/logging"
	"vidset/internal/manifest"
	"vidset/internal/pipeline"
	"vidset/internal/video"
)

var errNoSamples = errors.New("no samples written")

type buildOptions struct {
	annotations string
	source      string
	output      string
	splitRatio  float64
	stride      int
	seed        int64
	noProgress  bool
	noManifest  bool
	clean       bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the per-frame dataset from the annotation file",
		Long: `Build samples every Nth annotated box of each video, splits the sampled
frames of every video into train and val with a fixed-seed shuffle, decodes
each frame and writes images/<split>/<id>.<ext> with a matching
labels/<split>/<id>.txt. Missing videos and undecodable frames are counted
and skipped. An existing dataset root must have empty split directories
unless --clean is given, which removes earlier samples first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyBuildOverrides(cmd, cfg, opts); err != nil {
				return err
			}
			return runBuild(cmd, ctx, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.annotations, "annotations", "", "Annotation JSON file (overrides paths.annotations_file)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Video source root (overrides paths.source_root)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Dataset root (overrides paths.dataset_root)")
	cmd.Flags().Float64Var(&opts.splitRatio, "split", 0, "Train fraction within (0,1) (overrides sampling.split_ratio)")
	cmd.Flags().IntVar(&opts.stride, "stride", 0, "Keep every Nth box (overrides sampling.stride)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Shuffle seed (overrides sampling.seed)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&opts.noManifest, "no-manifest", false, "Skip the SQLite manifest for this run")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Remove existing images and labels under the dataset root before building")
	return cmd
}

func applyBuildOverrides(cmd *cobra.Command, cfg *config.Config, opts buildOptions) error {
	flags := cmd.Flags()
	for _, override := range []struct {
		flag  string
		value string
		dest  *string
	}{
		{"annotations", opts.annotations, &cfg.Paths.AnnotationsFile},
		{"source", opts.source, &cfg.Paths.SourceRoot},
		{"output", opts.output, &cfg.Paths.DatasetRoot},
	} {
		if !flags.Changed(override.flag) {
			continue
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(override.value))
		if err != nil {
			return fmt.Errorf("--%s: %w", override.flag, err)
		}
		*override.dest = expanded
	}
	if flags.Changed("split") {
		cfg.Sampling.SplitRatio = opts.splitRatio
	}
	if flags.Changed("stride") {
		cfg.Sampling.Stride = opts.stride
	}
	if flags.Changed("seed") {
		cfg.Sampling.Seed = opts.seed
	}
	if opts.noManifest {
		cfg.Manifest.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid build options: %w", err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts buildOptions) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	showProgress := !opts.noProgress && isTerminal(stderr)

	logger, err := ctx.newLogger(cfg, !showProgress)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	runID := uuid.NewString()
	logger = logger.With(slog.String(logging.FieldRunID, runID))

	entries, err := annotations.Load(cfg.Paths.AnnotationsFile)
	if err != nil {
		return err
	}

	layout := dataset.Layout{Root: cfg.Paths.DatasetRoot}
	lock, err := dataset.Lock(layout.Root)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Debug("release dataset lock failed", logging.Error(unlockErr))
		}
	}()

	if opts.clean {
		if err := dataset.Clean(layout); err != nil {
			return err
		}
		logger.Info("dataset cleaned", slog.String("dataset_root", layout.Root))
	} else if err := dataset.CheckEmpty(layout); err != nil {
		return fmt.Errorf("%w (rerun with --clean to replace them)", err)
	}
	if err := dataset.Prepare(layout); err != nil {
		return err
	}
	descriptorPath, err := dataset.WriteDescriptor(layout, cfg.Dataset.DescriptorName, cfg.Dataset.ClassName)
	if err != nil {
		return err
	}
	writer, err := dataset.NewWriter(layout, dataset.WriterOptions{
		Format:      cfg.Dataset.ImageFormat,
		JPEGQuality: cfg.Dataset.JPEGQuality,
	})
	if err != nil {
		return err
	}

	logger.Info("build started",
		slog.String("annotations", cfg.Paths.AnnotationsFile),
		slog.String("source_root", cfg.Paths.SourceRoot),
		slog.String("dataset_root", layout.Root),
		slog.Int("entries", len(entries)),
		slog.Int("stride", cfg.Sampling.Stride),
		slog.Int64("seed", cfg.Sampling.Seed),
		slog.Float64("split_ratio", cfg.Sampling.SplitRatio),
	)

	acc := pipeline.NewAccumulator()
	observers := pipeline.Observers{pipeline.NewLogObserver(logger)}

	report := buildReport{
		runID:          runID,
		datasetRoot:    layout.Root,
		descriptorPath: descriptorPath,
	}
	store := openManifest(signalCtx, cfg, runID, logger)
	if store != nil {
		defer store.Close()
		observers = append(observers, store.Observer(signalCtx, runID, logger))
		report.manifestPath = store.Path()
	}

	var progress *progressObserver
	if showProgress {
		progress = newProgressObserver(stderr, len(entries), acc)
		observers = append(observers, progress)
	}

	ffmpegBinary := cfg.FFmpegBinary()
	opener := video.NewFFmpegOpener(
		ffmpegBinary,
		deps.ResolveFFprobe(ffmpegBinary, cfg.FFprobeBinary()),
		time.Duration(cfg.Video.DecodeTimeout)*time.Second,
		logging.NewComponentLogger(logger, "video"),
	)
	runner, err := pipeline.New(pipeline.Options{
		Opener:      opener,
		Locator:     video.NewLocator(cfg.Paths.SourceRoot, cfg.Video.PathTemplate),
		Writer:      writer,
		Stride:      cfg.Sampling.Stride,
		SplitRatio:  cfg.Sampling.SplitRatio,
		Seed:        cfg.Sampling.Seed,
		Accumulator: acc,
		Observer:    observers,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	counters, runErr := runner.Run(signalCtx, entries)
	if progress != nil {
		progress.finish()
	}

	if store != nil {
		// The run context may already be cancelled; the final row must still land.
		if err := store.FinishRun(context.WithoutCancel(signalCtx), runID, counters, runErr); err != nil {
			logging.WarnWithContext(logger, "manifest finish failed", "manifest_error", "run row left in running state", logging.Error(err))
		}
	}

	finished := []slog.Attr{
		slog.Int("train", counters.Train),
		slog.Int("val", counters.Val),
		slog.Int("video_errors", counters.VideoErrors),
		slog.Int("frame_errors", counters.FrameErrors),
		slog.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	}
	if runErr != nil {
		finished = append(finished, logging.Error(runErr))
		logger.LogAttrs(signalCtx, slog.LevelError, "build stopped", finished...)
	} else {
		logger.LogAttrs(signalCtx, slog.LevelInfo, "build finished", finished...)
	}

	report.counters = counters
	fmt.Fprint(cmd.OutOrStdout(), renderBuildSummary(report, isTerminal(cmd.OutOrStdout())))

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("build interrupted after %d samples: %w", counters.Total(), runErr)
		}
		return fmt.Errorf("build failed: %w", runErr)
	}
	if counters.Total() == 0 {
		return errNoSamples
	}
	return nil
}

// openManifest opens the manifest and registers the run. Failures are logged
// and disable the manifest for this run.
func openManifest(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) *manifest.Store {
	if !cfg.Manifest.Enabled {
		return nil
	}
	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		logging.WarnWithContext(logger, "manifest unavailable", "manifest_error", "run not recorded in manifest",
			slog.String("path", cfg.ManifestPath()), logging.Error(err))
		return nil
	}
	err = store.BeginRun(ctx, manifest.RunInfo{
		ID:              runID,
		AnnotationsPath: cfg.Paths.AnnotationsFile,
		SourceRoot:      cfg.Paths.SourceRoot,
		DatasetRoot:     cfg.Paths.DatasetRoot,
		Stride:          cfg.Sampling.Stride,
		Seed:            cfg.Sampling.Seed,
		SplitRatio:      cfg.Sampling.SplitRatio,
	})
	if err != nil {
		_ = store.Close()
		logging.WarnWithContext(logger, "manifest unavailable", "manifest_error", "run not recorded in manifest", logging.Error(err))
		return nil
	}
	return store
}
