// Package bootstrap runs a finite jsonflow task with a uniform lifecycle.
//
// Start hooks run first, then the task under a context that is canceled on
// SIGINT or SIGTERM, then stop hooks within a graceful timeout. A Summary
// prints the resolved pipeline before the run and the counts after it.
//
//	app := bootstrap.NewApp("jsonflow", version.Get().Short(), bootstrap.WithLogger(log))
//	app.OnStop(shutdownTelemetry)
//	err := app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := executor.Run(ctx, src, sink.Emit)
//	    return err
//	})
package bootstrap
