package types

import "fmt"

// PatientStatus represents the coarse clinical status of a patient record
type PatientStatus string

const (
	PatientStatusNew       PatientStatus = "New"
	PatientStatusStable    PatientStatus = "Stable"
	PatientStatusImproving PatientStatus = "Improving"
	PatientStatusCritical  PatientStatus = "Critical"
)

// AllPatientStatuses returns all valid patient statuses
func AllPatientStatuses() []PatientStatus {
	return []PatientStatus{
		PatientStatusNew,
		PatientStatusStable,
		PatientStatusImproving,
		PatientStatusCritical,
	}
}

// IsValid checks if the patient status is valid
func (s PatientStatus) IsValid() bool {
	switch s {
	case PatientStatusNew,
		PatientStatusStable,
		PatientStatusImproving,
		PatientStatusCritical:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as PatientStatusNew.
func (s PatientStatus) Normalize() PatientStatus {
	if s == "" {
		return PatientStatusNew
	}
	return s
}

// String returns the string representation of the patient status
func (s PatientStatus) String() string {
	return string(s)
}

// ParsePatientStatus parses a string into a PatientStatus
func ParsePatientStatus(s string) (PatientStatus, error) {
	status := PatientStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid patient status: %s", s)
	}
	return status, nil
}
