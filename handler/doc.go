// Package handler binds HTTP requests to typed handler functions and renders
// their JSON responses.
//
//	type UpdateRequest struct {
//		ID      string `path:"id"`
//		Contact string `json:"contact"`
//	}
//
//	func update(ctx handler.Context, req UpdateRequest) handler.Response {
//		reg, err := svc.Update(ctx, ctx.Session().Email(), req.ID, ...)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(reg)
//	}
//
//	r.Put("/registrations/{id}", handler.Wrap(update,
//		handler.WithBinders[UpdateRequest](binder.Path(chi.URLParam), binder.JSON()),
//		handler.WithDecorators(handler.RequireAuth[UpdateRequest]()),
//	))
//
// Binders run in order and may return binder.ErrNotApplicable to be
// skipped. Binding and rendering failures go to the ErrorHandler, which by
// default writes a JSON error body with the status chosen by Classify.
//
// The request session, loaded by session.Manager.Middleware, is available
// through Context.Session.
package handler
