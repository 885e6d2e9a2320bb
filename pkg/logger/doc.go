// Package logger builds the service's slog.Logger and provides attribute
// helpers for the fields that recur across the code base (email, table,
// row position, sign-in source, request id).
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
//		logger.WithContextExtractors(logger.RequestIDExtractor(middleware.GetReqID)),
//	)
//	log.InfoContext(ctx, "registration stored", logger.Email(email), logger.Position(pos))
//
// Email addresses are masked before they reach the handler.
package logger
