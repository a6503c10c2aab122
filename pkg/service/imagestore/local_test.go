package imagestore_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
)

func TestLocal(t *testing.T) {
	ctx := t.Context()

	t.Run("put and get roundtrip", func(t *testing.T) {
		store, err := imagestore.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		ref, err := store.Put(ctx, []byte("fake-jpeg-bytes"), "image/jpeg")
		gt.NoError(t, err).Required()
		gt.String(t, ref).NotEqual("")

		data, mimeType, err := store.Get(ctx, ref)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("fake-jpeg-bytes")
		gt.Value(t, mimeType).Equal("image/jpeg")
	})

	t.Run("put is content addressed and idempotent", func(t *testing.T) {
		store, err := imagestore.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		ref1, err := store.Put(ctx, []byte("same-bytes"), "image/png")
		gt.NoError(t, err)
		ref2, err := store.Put(ctx, []byte("same-bytes"), "image/png")
		gt.NoError(t, err)
		gt.Value(t, ref1).Equal(ref2)

		ref3, err := store.Put(ctx, []byte("other-bytes"), "image/png")
		gt.NoError(t, err)
		gt.Value(t, ref3).NotEqual(ref1)
	})

	t.Run("unknown reference wraps ErrNotFound", func(t *testing.T) {
		store, err := imagestore.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		_, _, err = store.Get(ctx, "0000000000000000000000000000000000000000000000000000000000000000.jpg")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, imagestore.ErrNotFound)).True()
	})

	t.Run("path traversal references are rejected", func(t *testing.T) {
		store, err := imagestore.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		_, _, err = store.Get(ctx, "../secret.jpg")
		gt.Error(t, err)
	})

	t.Run("empty photo is rejected", func(t *testing.T) {
		store, err := imagestore.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		_, err = store.Put(ctx, nil, "image/jpeg")
		gt.Error(t, err)
	})
}
