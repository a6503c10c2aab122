package imagestore

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/utils/safe"
)

// GCS stores photos as objects in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Store = &GCS{}

// NewGCS creates a bucket-backed photo store
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("photo bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &GCS{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *GCS) objectName(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return path.Join(s.prefix, ref)
}

func (s *GCS) Put(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", goerr.New("photo data is empty")
	}

	ref := refFor(data) + extensionFor(mimeType)
	obj := s.client.Bucket(s.bucket).Object(s.objectName(ref))

	w := obj.NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write photo object", goerr.V("ref", ref))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize photo object", goerr.V("ref", ref))
	}

	return ref, nil
}

func (s *GCS) Get(ctx context.Context, ref string) ([]byte, string, error) {
	if ref == "" {
		return nil, "", goerr.Wrap(ErrNotFound, "invalid photo reference")
	}

	obj := s.client.Bucket(s.bucket).Object(s.objectName(ref))
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", goerr.Wrap(ErrNotFound, "photo object does not exist", goerr.V("ref", ref))
		}
		return nil, "", goerr.Wrap(err, "failed to open photo object", goerr.V("ref", ref))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read photo object", goerr.V("ref", ref))
	}

	mimeType := r.Attrs.ContentType
	if mimeType == "" {
		mimeType = mimeTypeForExtension(path.Ext(ref))
	}
	return data, mimeType, nil
}

// Close releases the underlying storage client
func (s *GCS) Close() error {
	return s.client.Close()
}
