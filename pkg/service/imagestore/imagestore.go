package imagestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound indicates the reference matches no stored photo
var ErrNotFound = goerr.New("photo not found")

// Store holds uploaded check-in photos, content-addressed. Records keep the
// returned reference instead of image bytes.
type Store interface {
	// Put stores the photo and returns its reference
	Put(ctx context.Context, data []byte, mimeType string) (string, error)

	// Get returns the photo bytes and MIME type for a reference.
	// Returns ErrNotFound (wrapped) for unknown references.
	Get(ctx context.Context, ref string) ([]byte, string, error)
}

// refFor derives the content-addressed reference for a photo
func refFor(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func mimeTypeForExtension(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
