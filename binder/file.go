package binder

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"reflect"
)

// DefaultMaxMemory is the in-memory part of a parsed multipart form.
const DefaultMaxMemory = 10 << 20

// FileUpload is an uploaded file read into memory.
type FileUpload struct {
	Filename string
	Size     int64
	Header   textproto.MIMEHeader
	Content  []byte
}

// ContentType returns the media type declared by the client.
func (f *FileUpload) ContentType() string {
	mediaType, _, _ := mime.ParseMediaType(f.Header.Get("Content-Type"))
	return mediaType
}

var fileUploadType = reflect.TypeFor[FileUpload]()

// File fills `file` fields of type FileUpload or *FileUpload from a
// multipart/form-data body. Files larger than maxBytes yield ErrTooLarge.
// Requests of any other content type return ErrNotApplicable.
func File(maxBytes int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "multipart/form-data" {
			return ErrNotApplicable
		}
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		}

		return structFields(v, "file", ErrInvalidForm, func(field reflect.Value, name string) error {
			headers := r.MultipartForm.File[name]
			if len(headers) == 0 {
				return nil
			}
			upload, err := readUpload(headers[0], maxBytes)
			if err != nil {
				return err
			}
			switch field.Type() {
			case fileUploadType:
				field.Set(reflect.ValueOf(*upload))
			case reflect.PointerTo(fileUploadType):
				field.Set(reflect.ValueOf(upload))
			default:
				return fmt.Errorf("unsupported type %s", field.Type())
			}
			return nil
		})
	}
}

func readUpload(fh *multipart.FileHeader, maxBytes int64) (*FileUpload, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, fh.Filename, maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, errors.Join(ErrTooLarge, fmt.Errorf("%s exceeds %d bytes", fh.Filename, maxBytes))
	}
	return &FileUpload{
		Filename: fh.Filename,
		Size:     int64(len(content)),
		Header:   fh.Header,
		Content:  content,
	}, nil
}
