package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

type patientRepository struct {
	mu sync.RWMutex
	// roster keeps insertion order, most-recently-added first
	roster []*model.PatientRecord
	index  map[types.PatientID]int
}

func newPatientRepository() *patientRepository {
	return &patientRepository{
		index: make(map[types.PatientID]int),
	}
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.PatientRecord, len(r.roster))
	for i, rec := range r.roster {
		result[i] = rec.Clone()
	}
	return result, nil
}

func (r *patientRepository) Get(ctx context.Context, id types.PatientID) (*model.PatientRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", id))
	}
	return r.roster[pos].Clone(), nil
}

func (r *patientRepository) Create(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[rec.ID]; ok {
		return nil, goerr.Wrap(model.ErrDuplicateID, "patient already exists", goerr.V("id", rec.ID))
	}

	created := rec.Clone()
	if created.History == nil {
		created.History = []model.HistoryEntry{}
	}

	r.roster = append([]*model.PatientRecord{created}, r.roster...)
	r.reindex()

	return created.Clone(), nil
}

func (r *patientRepository) Update(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[rec.ID]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", rec.ID))
	}

	updated := rec.Clone()
	r.roster[pos] = updated
	return updated.Clone(), nil
}

func (r *patientRepository) reindex() {
	for i, rec := range r.roster {
		r.index[rec.ID] = i
	}
}
