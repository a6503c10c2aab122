package blob

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

type patientRepository struct {
	repo *Repository
}

func (p *patientRepository) List(ctx context.Context) ([]*model.PatientRecord, error) {
	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()

	doc, err := p.repo.load(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.PatientRecord, len(doc.Patients))
	for i, rec := range doc.Patients {
		result[i] = rec.Clone()
	}
	return result, nil
}

func (p *patientRepository) Get(ctx context.Context, id types.PatientID) (*model.PatientRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient ID")
	}

	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()

	doc, err := p.repo.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range doc.Patients {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", id))
}

func (p *patientRepository) Create(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()

	doc, err := p.repo.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range doc.Patients {
		if existing.ID == rec.ID {
			return nil, goerr.Wrap(model.ErrDuplicateID, "patient already exists", goerr.V("id", rec.ID))
		}
	}

	created := rec.Clone()
	if created.History == nil {
		created.History = []model.HistoryEntry{}
	}

	doc.Patients = append([]*model.PatientRecord{created}, doc.Patients...)
	if err := p.repo.store(ctx, doc); err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

func (p *patientRepository) Update(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient record")
	}

	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()

	doc, err := p.repo.load(ctx)
	if err != nil {
		return nil, err
	}
	for i, existing := range doc.Patients {
		if existing.ID == rec.ID {
			updated := rec.Clone()
			doc.Patients[i] = updated
			if err := p.repo.store(ctx, doc); err != nil {
				return nil, err
			}
			return updated.Clone(), nil
		}
	}
	return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("id", rec.ID))
}
