package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Images holds CLI flags for the check-in photo store
type Images struct {
	backend string
	dir     string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for photo store configuration
func (i *Images) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "image-backend",
			Usage:       "Photo store backend (local or gcs)",
			Value:       "local",
			Sources:     cli.EnvVars("TELESKIN_IMAGE_BACKEND"),
			Destination: &i.backend,
		},
		&cli.StringFlag{
			Name:        "image-dir",
			Usage:       "Directory for stored photos (local backend)",
			Value:       "teleskin-images",
			Sources:     cli.EnvVars("TELESKIN_IMAGE_DIR"),
			Destination: &i.dir,
		},
		&cli.StringFlag{
			Name:        "image-bucket",
			Usage:       "Cloud Storage bucket for photos (gcs backend)",
			Sources:     cli.EnvVars("TELESKIN_IMAGE_BUCKET"),
			Destination: &i.bucket,
		},
		&cli.StringFlag{
			Name:        "image-prefix",
			Usage:       "Object name prefix (gcs backend)",
			Sources:     cli.EnvVars("TELESKIN_IMAGE_PREFIX"),
			Destination: &i.prefix,
		},
	}
}

// Configure initializes the photo store for the configured backend
func (i *Images) Configure(ctx context.Context) (imagestore.Store, error) {
	switch i.backend {
	case "local":
		store, err := imagestore.NewLocal(i.dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize local photo store")
		}
		logging.Default().Info("Using local photo store", "dir", i.dir)
		return store, nil

	case "gcs":
		store, err := imagestore.NewGCS(ctx, i.bucket, i.prefix)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize GCS photo store")
		}
		logging.Default().Info("Using GCS photo store", "bucket", i.bucket, "prefix", i.prefix)
		return store, nil

	default:
		return nil, goerr.New("invalid photo store backend", goerr.V("backend", i.backend))
	}
}
