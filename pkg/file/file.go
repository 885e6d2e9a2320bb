package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
)

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Storage is implemented by LocalStorage and S3Storage.
type Storage interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)
	// Delete removes key. Missing keys return ErrFileNotFound.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key.
	URL(key string) string
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Image is a validated upload held in memory.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Reader returns a fresh reader over the image bytes.
func (i *Image) Reader() io.Reader { return bytes.NewReader(i.Data) }

// Size returns the image length in bytes.
func (i *Image) Size() int64 { return int64(len(i.Data)) }

// ReadImage reads at most maxBytes from r and accepts only JPEG and PNG content.
// The type is sniffed from the bytes; client supplied headers are ignored.
func ReadImage(r io.Reader, maxBytes int64) (*Image, error) {
	data, err := ReadLimited(r, maxBytes)
	if err != nil {
		return nil, err
	}
	ct := http.DetectContentType(data)
	ext, ok := imageTypes[ct]
	if !ok {
		return nil, errors.Join(ErrMIMETypeNotAllowed, errors.New(ct))
	}
	return &Image{Data: data, ContentType: ct, Extension: ext}, nil
}

// ReadLimited reads r fully, failing with ErrFileTooLarge past maxBytes.
// maxBytes <= 0 disables the limit.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if r == nil {
		return nil, ErrEmptyFile
	}
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// AvatarKey derives a stable object key for email, so a new upload replaces the old one.
func AvatarKey(email, ext string) string {
	sum := sha256.Sum256([]byte(sanitizer.NormalizeEmail(email)))
	return "avatars/" + hex.EncodeToString(sum[:12]) + ext
}

// cleanKey normalizes key to a relative slash path and rejects traversal.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.Contains(key, "..") {
		return "", errors.Join(ErrInvalidPath, errors.New(key))
	}
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return "", ErrInvalidPath
	}
	return key, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
