package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/jsonflow/logger"
)

// Hook is a lifecycle callback that runs before or after the task.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run before the task. A failing start hook
// aborts the run.
func (a *App) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnStop registers hooks that run after the task, in reverse registration
// order. Use them to flush outputs and shut down exporters.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}

// runStopHooks executes every stop hook in reverse order. All hooks run;
// the first error is returned.
func (a *App) runStopHooks(ctx context.Context) error {
	var first error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("OnStop hook error", logger.Fields("hook", i, logger.FieldError, err.Error()))
			if first == nil {
				first = fmt.Errorf("stop hook %d failed: %w", i, err)
			}
		}
	}
	return first
}
