package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/jsonflow/logger"
)

const defaultGracefulTimeout = 10 * time.Second

// App runs one finite task with start and stop hooks and signal handling.
type App struct {
	Name    string
	Version string
	Logger  *logger.Logger
	Summary *Summary

	gracefulTimeout time.Duration
	signals         []os.Signal

	onStart []Hook
	onStop  []Hook
}

// NewApp creates an application runner.
func NewApp(name, version string, opts ...Option) *App {
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	timeout := defaultGracefulTimeout
	if o.gracefulTimeout != nil {
		timeout = *o.gracefulTimeout
	}
	signals := o.signals
	if signals == nil {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	out := o.summaryOut
	if out == nil {
		out = os.Stderr
	}

	return &App{
		Name:            name,
		Version:         version,
		Logger:          log.WithComponent("app"),
		Summary:         NewSummary(name, version, out),
		gracefulTimeout: timeout,
		signals:         signals,
	}
}

// RunTask runs start hooks, then task, then stop hooks. The task context is
// canceled when one of the configured signals arrives; stop hooks still run
// with a fresh deadline so outputs can be flushed.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	start := time.Now()
	a.Logger.Info("Starting task", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	a.Summary.DisplayPlan()

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Warn("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	stopErr := a.stop(ctx)

	a.Logger.Debug("Task finished", logger.MergeWithDuration(nil, time.Since(start)))
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App) stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()
	return a.runStopHooks(ctx)
}
