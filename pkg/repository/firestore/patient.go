package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type patientRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newPatientRepository(client *firestore.Client) *patientRepository {
	return &patientRepository{client: client}
}

func (r *patientRepository) patientsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_patients"
	}
	return "patients"
}

// List returns all records ordered most-recently-added first
func (r *patientRepository) List(ctx context.Context) ([]*model.PatientRecord, error) {
	iter := r.client.Collection(r.patientsCollection()).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var result []*model.PatientRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate patients")
		}

		var rec model.PatientRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal patient", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, &rec)
	}

	if result == nil {
		result = []*model.PatientRecord{}
	}
	return result, nil
}

func (r *patientRepository) Get(ctx context.Context, id types.PatientID) (*model.PatientRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient ID")
	}

	doc, err := r.client.Collection(r.patientsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("id", id))
	}

	var rec model.PatientRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal patient", goerr.V("id", id))
	}
	return &rec, nil
}

func (r *patientRepository) Create(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	created := rec.Clone()
	if created.History == nil {
		created.History = []model.HistoryEntry{}
	}

	docRef := r.client.Collection(r.patientsCollection()).Doc(created.ID.String())
	if _, err := docRef.Get(ctx); err == nil {
		return nil, goerr.Wrap(model.ErrDuplicateID, "patient already exists", goerr.V("id", created.ID))
	} else if status.Code(err) != codes.NotFound {
		return nil, goerr.Wrap(err, "failed to check patient existence", goerr.V("id", created.ID))
	}

	if _, err := docRef.Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create patient", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *patientRepository) Update(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	docRef := r.client.Collection(r.patientsCollection()).Doc(rec.ID.String())
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", rec.ID))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("id", rec.ID))
	}

	updated := rec.Clone()
	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update patient", goerr.V("id", rec.ID))
	}
	return updated, nil
}
