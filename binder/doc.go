// Package binder fills request structs from JSON bodies, path and query
// parameters and multipart file uploads.
//
// Struct fields opt in with tags:
//
//	type AvatarRequest struct {
//		ID     string      `path:"id"`
//		Page   int         `query:"page"`
//		Avatar *FileUpload `file:"avatar"`
//	}
//
// Binders that do not apply to a request return ErrNotApplicable so the
// caller can skip them.
package binder
