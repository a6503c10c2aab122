package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/interfaces"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

// RecordUseCase owns the patient roster. It is the only writer: records are
// mutated exclusively through its create/append operations.
type RecordUseCase struct {
	repo interfaces.Repository

	seedMu sync.Mutex
	seeded bool
}

func NewRecordUseCase(repo interfaces.Repository) *RecordUseCase {
	return &RecordUseCase{
		repo: repo,
	}
}

// ListPatients returns all records in roster order, most-recently-added
// first. The first call against an empty store seeds the demo roster and
// persists it before returning.
func (uc *RecordUseCase) ListPatients(ctx context.Context) ([]*model.PatientRecord, error) {
	if err := uc.seedIfEmpty(ctx); err != nil {
		return nil, err
	}

	records, err := uc.repo.Patient().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}
	return records, nil
}

// GetPatient returns one record. An unknown ID yields model.ErrNotFound
// (wrapped), which callers treat as a recoverable empty view.
func (uc *RecordUseCase) GetPatient(ctx context.Context, id types.PatientID) (*model.PatientRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient ID")
	}

	rec, err := uc.repo.Patient().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// AddPatient creates a record with a fresh time-derived ID and an empty
// history, prepends it to the roster and returns it.
func (uc *RecordUseCase) AddPatient(ctx context.Context, name string, age int, condition string) (*model.PatientRecord, error) {
	now := time.Now().UTC()
	rec := &model.PatientRecord{
		ID:         newPatientID(now),
		Name:       name,
		Age:        age,
		Condition:  condition,
		Status:     types.PatientStatusNew,
		LastUpdate: now,
		History:    []model.HistoryEntry{},
		CreatedAt:  now,
	}
	if err := rec.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "invalid patient record", goerr.V("reason", err.Error()))
	}

	created, err := uc.repo.Patient().Create(ctx, rec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create patient record", goerr.V("id", rec.ID))
	}
	return created, nil
}

// AddHistoryEntry prepends an entry to the patient's history, bumps
// LastUpdate and recomputes Status from the entry's severity score. The
// recomputation is unconditional: a zero-score check-in entry also moves the
// status, to Improving. An unknown patient is a logged no-op.
func (uc *RecordUseCase) AddHistoryEntry(ctx context.Context, patientID types.PatientID, entry model.HistoryEntry) (*model.PatientRecord, error) {
	if entry.ID == "" {
		entry.ID = types.NewEntryID()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "invalid history entry", goerr.V("patient_id", patientID), goerr.V("reason", err.Error()))
	}

	rec, err := uc.repo.Patient().Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logging.From(ctx).Warn("history entry targets unknown patient, dropping",
				"patient_id", patientID, "entry_id", entry.ID)
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get patient record", goerr.V("patient_id", patientID))
	}

	// Newest first by insertion, never re-sorted: backfilled past dates keep
	// their insertion position.
	rec.History = append([]model.HistoryEntry{entry}, rec.History...)
	rec.LastUpdate = time.Now().UTC()
	rec.Status = entry.SeverityScore.PatientStatus()

	updated, err := uc.repo.Patient().Update(ctx, rec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update patient record", goerr.V("patient_id", patientID))
	}
	return updated, nil
}

func (uc *RecordUseCase) seedIfEmpty(ctx context.Context) error {
	uc.seedMu.Lock()
	defer uc.seedMu.Unlock()

	if uc.seeded {
		return nil
	}

	records, err := uc.repo.Patient().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to check roster before seeding")
	}
	if len(records) > 0 {
		uc.seeded = true
		return nil
	}

	// Create prepends, so seed in reverse to keep the demo order
	seeds := DemoRoster()
	for i := len(seeds) - 1; i >= 0; i-- {
		if _, err := uc.repo.Patient().Create(ctx, seeds[i]); err != nil {
			return goerr.Wrap(err, "failed to seed demo roster", goerr.V("id", seeds[i].ID))
		}
	}

	logging.From(ctx).Info("seeded demo roster", "count", len(seeds))
	uc.seeded = true
	return nil
}

// newPatientID allocates a time-derived monotonic ID. Collisions are
// acceptable at demo scale; the repository rejects duplicates.
func newPatientID(now time.Time) types.PatientID {
	return types.PatientID(strconv.FormatInt(now.UnixMilli(), 10))
}

// DemoRoster returns the three demo records seeded into an empty store.
// CreatedAt is staggered so backends ordering by creation time keep the
// roster order 1, 2, 3.
func DemoRoster() []*model.PatientRecord {
	now := time.Now().UTC()
	return []*model.PatientRecord{
		{
			ID:         "1",
			Name:       "Sarah Mitchell",
			Age:        34,
			Condition:  "Atopic Dermatitis",
			Status:     types.PatientStatusStable,
			LastUpdate: now,
			History: []model.HistoryEntry{
				{
					ID:            types.NewEntryID(),
					Date:          now.AddDate(0, 0, -7),
					Notes:         "Flare on inner elbow responding to topical steroid.",
					SeverityScore: 5,
				},
			},
			CreatedAt: now,
		},
		{
			ID:         "2",
			Name:       "James Okafor",
			Age:        52,
			Condition:  "Psoriasis",
			Status:     types.PatientStatusImproving,
			LastUpdate: now,
			History: []model.HistoryEntry{
				{
					ID:            types.NewEntryID(),
					Date:          now.AddDate(0, 0, -14),
					Notes:         "Plaques thinning after phototherapy course.",
					SeverityScore: 3,
				},
			},
			CreatedAt: now.Add(-time.Minute),
		},
		{
			ID:         "3",
			Name:       "Elena Vasquez",
			Age:        27,
			Condition:  "Suspicious Nevus",
			Status:     types.PatientStatusNew,
			LastUpdate: now,
			History:    []model.HistoryEntry{},
			CreatedAt:  now.Add(-2 * time.Minute),
		},
	}
}
