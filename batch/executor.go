package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/resilience"
	"github.com/kbukum/jsonflow/stream"
)

// DefaultWorkers is used when Config.Workers is not positive.
const DefaultWorkers = 4

// Config configures an Executor.
type Config struct {
	// Workers is the number of records processed concurrently.
	Workers int
	// Deadline bounds the run, measured from the start of Run. Zero means none.
	Deadline time.Duration
	// RetryFailed re-runs a record whose failure is retryable, up to this
	// many extra times, while the deadline allows.
	RetryFailed int
}

// Emit receives outcomes one at a time. An error aborts the run.
type Emit func(flow.Outcome) error

// Executor runs a Pipeline over many records.
type Executor struct {
	pipeline *flow.Pipeline
	cfg      Config
	log      *logger.Logger
	metrics  *observability.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an Executor.
func New(p *flow.Pipeline, cfg Config, opts ...Option) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.RetryFailed < 0 {
		cfg.RetryFailed = 0
	}
	e := &Executor{pipeline: p, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.log = e.log.WithComponent("batch")
	return e
}

type job struct {
	index int
	rec   record.Record
	id    string
	err   error
}

// Run processes every record from src and closes it. The returned error is
// set only when the source fails, emit fails, or ctx was canceled; in the
// last case every record still has an outcome.
func (e *Executor) Run(ctx context.Context, src stream.Iterator[record.Record], emit Emit) (Report, error) {
	defer src.Close()

	start := time.Now()
	runCtx := ctx
	if e.cfg.Deadline > 0 {
		runCtx = flow.WithDeadline(ctx, start.Add(e.cfg.Deadline))
	}

	slots := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "batch",
		MaxConcurrent: e.cfg.Workers,
	})

	var (
		mu     sync.Mutex
		report Report
	)
	deliver := func(o flow.Outcome) error {
		mu.Lock()
		defer mu.Unlock()
		report.add(o)
		return emit(o)
	}

	// Only internal failures stop the group; caller cancellation still
	// drains the source so every record gets an outcome.
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	jobs := make(chan job)

	g.Go(func() error {
		defer close(jobs)
		return e.produce(gctx, src, jobs)
	})

	for range e.cfg.Workers {
		g.Go(func() error {
			for j := range jobs {
				var o flow.Outcome
				err := slots.Execute(gctx, func() error {
					o = e.process(runCtx, j)
					return nil
				})
				if err != nil {
					return err
				}
				if err := deliver(o); err != nil {
					return fmt.Errorf("emit outcome %s: %w", o.ID, err)
				}
			}
			return nil
		})
	}

	err := g.Wait()

	report.PeakInFlight = slots.Peak()
	report.Duration = time.Since(start)

	fields := report.Fields()
	if err != nil {
		e.log.Error("batch aborted", logger.MergeWithError(fields, err))
		return report, err
	}
	e.log.Info("batch complete", fields)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, ctxErr
	}
	return report, nil
}

// produce feeds jobs until the source is exhausted. Decode errors become
// failed jobs; any other source error is fatal.
func (e *Executor) produce(ctx context.Context, src stream.Iterator[record.Record], jobs chan<- job) error {
	for index := 0; ; index++ {
		rec, ok, err := src.Next(ctx)
		var j job
		switch {
		case err != nil:
			var de *record.DecodeError
			if !stderrors.As(err, &de) {
				return errors.Processing("read input", err)
			}
			j = job{index: index, id: fmt.Sprintf("line-%d", de.Line), err: errors.Processing("invalid input record", err)}
		case !ok:
			return nil
		default:
			j = job{index: index, rec: rec}
		}

		select {
		case jobs <- j:
		case <-ctx.Done():
			return nil
		}
	}
}

// process runs one record to its outcome.
func (e *Executor) process(ctx context.Context, j job) (out flow.Outcome) {
	if j.err != nil {
		return e.finish(ctx, flow.Failure(j.index, j.id, j.err), 0)
	}

	id := j.rec.ID()
	if id == "" {
		return e.finish(ctx, flow.Failure(j.index, fmt.Sprintf("index-%d", j.index), errors.MissingField(record.FieldID)), 0)
	}

	switch {
	case ctx.Err() != nil:
		return e.finish(ctx, flow.Failure(j.index, id, errors.Canceled("record", ctx.Err())), 0)
	case flow.Expired(ctx):
		return e.finish(ctx, flow.Failure(j.index, id, errors.Timeout("record")), 0)
	}

	start := time.Now()
	rctx := logger.ContextWithRecordID(ctx, id)
	rctx, span := observability.StartSpan(rctx, observability.SpanRecordProcess,
		attribute.String(observability.AttrRecordID, id),
		attribute.Int(observability.AttrIndex, j.index),
	)

	defer func() {
		if r := recover(); r != nil {
			out = flow.Failure(j.index, id, errors.Processingf("record panicked: %v", r))
		}
		observability.EndSpan(span, out.Err)
		out = e.finish(rctx, out, time.Since(start))
	}()

	for attempt := 0; ; attempt++ {
		rec, err := e.pipeline.Apply(rctx, j.rec)
		if err == nil {
			return flow.Success(j.index, rec)
		}
		if attempt < e.cfg.RetryFailed && errors.IsRetryable(err) && ctx.Err() == nil && !flow.Expired(ctx) {
			e.log.WithContext(rctx).Warn("record failed, running again", logger.Fields(
				logger.FieldAttempt, attempt+1,
				logger.FieldErrorKind, string(errors.Kind(err)),
				logger.FieldError, err.Error(),
			))
			continue
		}
		failed := flow.Failure(j.index, id, err)
		failed.Record = rec
		return failed
	}
}

func (e *Executor) finish(ctx context.Context, o flow.Outcome, d time.Duration) flow.Outcome {
	e.metrics.RecordOutcome(ctx, string(o.Kind()), d)
	if !o.OK() {
		fields := logger.Fields(
			logger.FieldIndex, o.Index,
			logger.FieldErrorKind, string(o.Kind()),
		)
		if op, ok := flow.FailedOperator(o.Err); ok {
			fields[logger.FieldOperator] = op
		}
		e.log.WithContext(ctx).Warn("record failed", logger.MergeWithError(fields, o.Err))
	}
	return o
}
