package file

import (
	"context"
	"fmt"
)

// Storage drivers.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the avatar storage.
type Config struct {
	Driver   string `env:"AVATAR_STORAGE" envDefault:"local"`
	MaxBytes int64  `env:"AVATAR_MAX_BYTES" envDefault:"5242880"`
	LocalDir string `env:"AVATAR_LOCAL_DIR" envDefault:"./uploads"`
	BaseURL  string `env:"AVATAR_BASE_URL" envDefault:"/uploads"`
	S3       S3Config
}

// S3Config holds the bucket settings.
type S3Config struct {
	Bucket         string `env:"AVATAR_S3_BUCKET"`
	Region         string `env:"AVATAR_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"AVATAR_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"AVATAR_S3_SECRET_KEY"`
	Endpoint       string `env:"AVATAR_S3_ENDPOINT"`
	BaseURL        string `env:"AVATAR_S3_PUBLIC_URL"`
	ForcePathStyle bool   `env:"AVATAR_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the Storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config, opts ...S3Option) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case DriverS3:
		return NewS3Storage(ctx, cfg.S3, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
