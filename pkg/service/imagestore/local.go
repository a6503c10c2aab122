package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Local stores photos as files under one directory
type Local struct {
	dir string
}

var _ Store = &Local{}

// NewLocal creates a directory-backed photo store
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, goerr.New("photo directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create photo directory", goerr.V("dir", dir))
	}
	return &Local{dir: dir}, nil
}

func (s *Local) Put(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", goerr.New("photo data is empty")
	}

	ref := refFor(data) + extensionFor(mimeType)
	path := filepath.Join(s.dir, ref)

	// Content-addressed: an existing file already holds the same bytes
	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", goerr.Wrap(err, "failed to write photo", goerr.V("path", path))
	}
	return ref, nil
}

func (s *Local) Get(ctx context.Context, ref string) ([]byte, string, error) {
	if ref == "" || strings.Contains(ref, "/") || strings.Contains(ref, "..") {
		return nil, "", goerr.Wrap(ErrNotFound, "invalid photo reference", goerr.V("ref", ref))
	}

	path := filepath.Join(s.dir, ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", goerr.Wrap(ErrNotFound, "photo file does not exist", goerr.V("ref", ref))
		}
		return nil, "", goerr.Wrap(err, "failed to read photo", goerr.V("ref", ref))
	}

	return data, mimeTypeForExtension(filepath.Ext(ref)), nil
}
