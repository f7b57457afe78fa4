package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kbukum/jsonflow/batch"
	"github.com/kbukum/jsonflow/bootstrap"
	"github.com/kbukum/jsonflow/config"
	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/sink"
	"github.com/kbukum/jsonflow/source"
	"github.com/kbukum/jsonflow/stream"
	"github.com/kbukum/jsonflow/version"
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitFatal
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.Get())
		return exitOK
	}

	cfg, err := config.Load(opts.configPath, opts.overrides())
	if err != nil {
		fmt.Fprintf(stderr, "jsonflow: %v\n", err)
		return exitFatal
	}

	logOut := stderr
	if cfg.Logging.Output == "stdout" {
		logOut = stdout
	}
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, logOut)
	logger.SetGlobalLogger(log)
	ctx = logger.ContextWithRunID(ctx, uuid.NewString())

	summaryOut := stderr
	if opts.quiet {
		summaryOut = io.Discard
	}
	app := bootstrap.NewApp(cfg.Name, version.Get().Short(),
		bootstrap.WithLogger(log),
		bootstrap.WithSummaryWriter(summaryOut),
	)

	r, err := newRunner(ctx, cfg, opts, app, log, stdout, stderr)
	if err != nil {
		log.Error("run setup failed", logger.MergeWithError(nil, err))
		fmt.Fprintf(stderr, "jsonflow: %v\n", err)
		return exitFatal
	}

	var report batch.Report
	err = app.RunTask(ctx, func(ctx context.Context) error {
		var runErr error
		report, runErr = r.executor.Run(ctx, r.source, r.sink.Emit)
		return runErr
	})

	app.Summary.DisplayResult(resultInfo(report))
	return exitCode(ctx, report, err, stderr)
}

func exitCode(ctx context.Context, report batch.Report, err error, stderr io.Writer) int {
	switch {
	case err != nil && ctx.Err() != nil && stderrors.Is(err, ctx.Err()):
		fmt.Fprintf(stderr, "jsonflow: interrupted, %d records accounted for\n", report.Total)
		return exitPartial
	case err != nil:
		fmt.Fprintf(stderr, "jsonflow: %v\n", err)
		return exitFatal
	case report.HasFailures():
		return exitPartial
	}
	return exitOK
}

func resultInfo(r batch.Report) bootstrap.ResultInfo {
	byKind := make(map[string]int, len(r.ByKind))
	for k, n := range r.ByKind {
		byKind[string(k)] = n
	}
	return bootstrap.ResultInfo{
		Total:     r.Total,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Peak:      r.PeakInFlight,
		Duration:  r.Duration,
		ByKind:    byKind,
	}
}

// runner holds everything one run needs, fully built before any record is read.
type runner struct {
	executor *batch.Executor
	source   stream.Iterator[record.Record]
	sink     *sink.Sink
}

func newRunner(ctx context.Context, cfg config.PipelineConfig, opts options, app *bootstrap.App,
	log *logger.Logger, stdout, stderr io.Writer) (*runner, error) {
	cfg.Telemetry.ServiceVersion = version.Get().Short()
	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, errors.Configuration("telemetry setup failed").WithCause(err)
	}
	app.OnStop(shutdown)
	metrics := observability.DefaultMetrics()

	client, err := newClient(cfg, log, metrics)
	if err != nil {
		return nil, err
	}
	app.Summary.TrackClient(client.Name(), cfg.BaseURL, cfg.Dialect)

	p, err := buildPipeline(cfg, opts.imageDir != "", client, log, metrics)
	if err != nil {
		return nil, err
	}
	for _, name := range p.Names() {
		app.Summary.TrackStep(name, "")
	}
	app.Summary.TrackSetting("workers", strconv.Itoa(cfg.Batch.Workers))
	if cfg.Batch.Deadline > 0 {
		app.Summary.TrackSetting("deadline", cfg.Batch.Deadline.String())
	}
	if cfg.Batch.Ordered {
		app.Summary.TrackSetting("ordered", "true")
	}

	src, err := openSource(opts)
	if err != nil {
		return nil, err
	}
	app.OnStop(func(context.Context) error { return src.Close() })

	out, err := openOutput(opts.output, stdout, app)
	if err != nil {
		return nil, err
	}
	errOut, err := openOutput(opts.errorsFile(), stderr, app)
	if err != nil {
		return nil, err
	}
	s := sink.New(out, errOut, sink.Config{Ordered: cfg.Batch.Ordered}, log)
	// Stop hooks run last-registered first: buffered outcomes reach the
	// writers before they are flushed.
	app.OnStop(func(context.Context) error { return s.Flush() })

	exec := batch.New(p, batch.Config{
		Workers:     cfg.Batch.Workers,
		Deadline:    cfg.Batch.Deadline,
		RetryFailed: cfg.Batch.RetryFailed,
	}, batch.WithLogger(log), batch.WithMetrics(metrics))

	return &runner{executor: exec, source: src, sink: s}, nil
}

func openSource(o options) (stream.Iterator[record.Record], error) {
	switch {
	case o.imageDir != "" && o.input != "":
		return nil, errors.Configuration("use either --input or --image-dir, not both")
	case o.imageDir != "":
		return source.Images(o.imageDir, o.numSamples)
	case o.input == "":
		return nil, errors.Configuration("one of --input or --image-dir is required")
	case source.IsJSONL(o.input):
		it, err := source.OpenJSONL(o.input)
		if err != nil {
			return nil, err
		}
		return stream.Take(it, o.numSamples), nil
	default:
		return source.Text(o.input)
	}
}

// openOutput returns a buffered writer for path, or for fallback when path
// is empty. The buffer is flushed and the file closed by a stop hook.
func openOutput(path string, fallback io.Writer, app *bootstrap.App) (io.Writer, error) {
	w := fallback
	var f *os.File
	if path != "" {
		var err error
		if f, err = os.Create(path); err != nil {
			return nil, errors.Configurationf("create output %s", path).WithCause(err)
		}
		w = f
	}

	buf := bufio.NewWriter(w)
	app.OnStop(func(context.Context) error {
		err := buf.Flush()
		if f != nil {
			err = stderrors.Join(err, f.Close())
		}
		return err
	})
	return buf, nil
}
