package interfaces

import (
	"context"

	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// PatientRepository defines the interface for patient roster access.
// Roster order is insertion order, most-recently-added first; history order
// inside a record is insertion order, newest first.
type PatientRepository interface {
	// List retrieves all records in roster order
	List(ctx context.Context) ([]*model.PatientRecord, error)

	// Get retrieves a record by ID. Returns model.ErrNotFound (wrapped) when
	// the ID matches no record; callers treat that as a recoverable condition.
	Get(ctx context.Context, id types.PatientID) (*model.PatientRecord, error)

	// Create prepends a new record to the roster. Fails with
	// model.ErrDuplicateID when the ID is already taken.
	Create(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error)

	// Update replaces the stored record with the same ID
	Update(ctx context.Context, rec *model.PatientRecord) (*model.PatientRecord, error)
}
