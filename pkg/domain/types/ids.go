package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// PatientID is the unique identifier of a patient record.
// Demo roster IDs are small decimal strings; newly added records get
// time-derived IDs (see RecordUseCase.AddPatient).
type PatientID string

// Validate checks if the patient ID is non-empty
func (id PatientID) Validate() error {
	if id == "" {
		return goerr.New("patient ID is empty")
	}
	return nil
}

// String returns the string representation of the patient ID
func (id PatientID) String() string {
	return string(id)
}

// EntryID is the unique identifier of a history entry
type EntryID string

// NewEntryID generates a new unique EntryID
func NewEntryID() EntryID {
	return EntryID(uuid.New().String())
}

// String returns the string representation of the entry ID
func (id EntryID) String() string {
	return string(id)
}

// NotificationID is the unique identifier of a feed notification
type NotificationID string

// NewNotificationID generates a new unique NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// String returns the string representation of the notification ID
func (id NotificationID) String() string {
	return string(id)
}
