// Package file stores uploaded avatar images on the local disk or in S3.
//
// Both backends implement Storage. Uploads are validated before they reach a
// backend: ReadImage caps the size and sniffs the content, accepting only JPEG
// and PNG.
//
//	img, err := file.ReadImage(part, cfg.MaxBytes)
//	if err != nil {
//		return err // ErrFileTooLarge or ErrMIMETypeNotAllowed
//	}
//	obj, err := storage.Put(ctx, file.AvatarKey(email, img.Extension), img.Reader(), img.Size(), img.ContentType)
//
// S3Storage works with AWS and S3 compatible services (MinIO, R2) through
// aws-sdk-go-v2; set Endpoint and ForcePathStyle for the latter.
package file
