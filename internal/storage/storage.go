// Package storage keeps uploaded cover images either on local disk or in an
// S3 compatible bucket and turns stored references into URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/game-catalog/internal/config"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Store saves, deletes and addresses objects by key.  Keys use forward
// slashes, e.g. "covers/5f1c...jpg".
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ref string) string
}

// New returns the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// CoverKey returns a fresh key for a processed cover image.
func CoverKey() string { return "covers/" + uuid.NewString() + ".jpg" }

// IsExternal reports whether ref already is an absolute URL, as seeded
// catalogs sometimes point at images hosted elsewhere.
func IsExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
