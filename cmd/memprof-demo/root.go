package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yeongki/memprof/internal/artifacts"
	"github.com/yeongki/memprof/internal/env"
	"github.com/yeongki/memprof/internal/report"
	"github.com/yeongki/memprof/pkg/memprof"
	"github.com/yeongki/memprof/pkg/memprof/promsink"
)

type runFlags struct {
	envFile      string
	enable       string
	metrics      bool
	artifactsDir string
	runID        string
}

func newRootCmd() *cobra.Command {
	var (
		f       runFlags
		zapOpts = crzap.Options{Development: true}
	)

	cmd := &cobra.Command{
		Use:   "memprof-demo",
		Short: "Bind a sample component with memory profiling and exercise it",
		Long: `memprof-demo wraps every operation of a small in-memory catalog, calls them
(including overlapping async loads) and logs one line per successful call.

Instrumentation is on only when ENABLE_MEMORY_PROFILING_DECORATOR is exactly "true".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.LoadDotenv(f.envFile); err != nil {
				return err
			}
			cfg, err := env.LoadOptions()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("enable") {
				cfg.EnableDecorator = f.enable
			}
			if flags.Changed("metrics") {
				cfg.Metrics = f.metrics
			}
			if flags.Changed("artifacts-dir") {
				cfg.ArtifactsDir = f.artifactsDir
			}
			if flags.Changed("run-id") {
				cfg.RunID = f.runID
			}

			logger := crzap.NewRaw(crzap.UseFlagOptions(&zapOpts))
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), cmd.OutOrStdout(), logger, cfg)
		},
	}

	fs := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(fs)
	cmd.Flags().AddGoFlagSet(fs)

	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&f.enable, "enable", "", "override "+memprof.EnvEnableDecorator)
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "print Prometheus metrics for the run")
	cmd.Flags().StringVar(&f.artifactsDir, "artifacts-dir", "", "write a JSON run summary into this directory")
	cmd.Flags().StringVar(&f.runID, "run-id", "", "run identifier recorded in the summary")

	return cmd
}

func run(ctx context.Context, out io.Writer, logger *zap.Logger, cfg env.Options) error {
	log := logger.Named("memprof-demo")

	rec := memprof.NewRecorder()
	sinks := []memprof.Sink{memprof.NewZapSink(logger.Named("memprof")), rec}

	reg := prometheus.NewRegistry()
	if cfg.Metrics {
		ps, err := promsink.New(reg)
		if err != nil {
			return err
		}
		sinks = append(sinks, ps)
	}

	binder := memprof.NewBinder(memprof.Options{
		Enabled: cfg.Enabled(),
		Sink:    memprof.MultiSink(sinks...),
	})
	log.Info("binding catalog", zap.Bool("enabled", binder.Enabled()))
	catalog := memprof.BindStruct(binder, newCatalog())

	started := time.Now()
	if err := exercise(ctx, log, catalog); err != nil {
		return err
	}
	ended := time.Now()

	if cfg.Metrics {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}

	if cfg.ArtifactsDir != "" {
		opts := report.ArtifactOptions{ArtifactsDir: cfg.ArtifactsDir, RunID: cfg.RunID}
		summary := report.Build(
			report.DefaultMeta("cli", "catalog", cfg.RunID, binder.Enabled()),
			report.DefaultLabels("catalog", cfg.RunID),
			started, ended, rec.Entries(),
		)
		path := opts.SummaryPath()
		if err := (artifacts.JSONFileWriter{Path: path}).WriteJSON(summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("wrote summary", zap.String("path", path), zap.Int("records", len(summary.Records)))
	}
	return nil
}

func exercise(ctx context.Context, log *zap.Logger, c Catalog) error {
	for i, size := range []int{64 << 10, 1 << 20, 4 << 20} {
		n := c.Put(fmt.Sprintf("blob-%d", i), size)
		log.Debug("put", zap.Int("items", n))
	}

	keys := c.Keys()
	for _, k := range append(keys, "missing") {
		sum, err := c.Checksum(k)
		if errors.Is(err, errNotFound) {
			log.Info("checksum skipped", zap.String("key", k), zap.Error(err))
			continue
		}
		log.Debug("checksum", zap.String("key", k), zap.Uint32("crc32", sum))
	}

	// overlapping async calls: each one reports its own span
	short := c.Load(ctx, keys[0], 10*time.Millisecond)
	long := c.Load(ctx, keys[len(keys)-1], 50*time.Millisecond)
	for _, fut := range []*memprof.Future[int]{short, long} {
		n, err := fut.Await(ctx)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		log.Debug("loaded", zap.Int("bytes", n))
	}

	score, err := c.Warm(ctx, keys...).Await(ctx)
	if err != nil {
		return fmt.Errorf("warm: %w", err)
	}
	log.Debug("warmed", zap.Int("score", score))
	return nil
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
