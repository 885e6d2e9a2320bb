// Package httpserver runs the HTTP API with graceful shutdown and health probes.
//
// Server listens on the configured address and blocks in Run until the
// context is cancelled, SIGINT/SIGTERM arrives or Shutdown is called. After
// the listener stops, cleanups registered with WithCleanup run in order,
// which is where store connections are closed:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithCleanup(func(context.Context) error { pool.Close(); return nil }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Liveness and Readiness provide /healthz and /readyz handlers. Readiness
// reports every Probe by name and answers 503 when one fails.
package httpserver
