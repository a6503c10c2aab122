package auth

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// Session is a tagged union over {None, Patient{patientID}, Doctor{name}}.
// Role and payload cannot disagree: Validate rejects any mismatch.
type Session struct {
	Role       types.Role      `json:"role"`
	PatientID  types.PatientID `json:"patient_id,omitempty"`
	DoctorName string          `json:"doctor_name,omitempty"`
}

// AnonymousSession returns the unauthenticated session
func AnonymousSession() Session {
	return Session{Role: types.RoleNone}
}

// NewPatientSession returns a session for the patient portal
func NewPatientSession(patientID types.PatientID) Session {
	return Session{Role: types.RolePatient, PatientID: patientID}
}

// NewDoctorSession returns a session for the doctor portal
func NewDoctorSession(name string) Session {
	return Session{Role: types.RoleDoctor, DoctorName: name}
}

// IsAuthenticated reports whether the session grants portal access
func (s Session) IsAuthenticated() bool {
	return s.Role == types.RolePatient || s.Role == types.RoleDoctor
}

// Validate checks role/payload agreement
func (s Session) Validate() error {
	switch s.Role {
	case types.RoleNone:
		if s.PatientID != "" || s.DoctorName != "" {
			return goerr.New("anonymous session must not carry identity")
		}
	case types.RolePatient:
		if s.PatientID == "" {
			return goerr.New("patient session requires a patient ID")
		}
		if s.DoctorName != "" {
			return goerr.New("patient session must not carry a doctor name")
		}
	case types.RoleDoctor:
		if s.DoctorName == "" {
			return goerr.New("doctor session requires a doctor name")
		}
		if s.PatientID != "" {
			return goerr.New("doctor session must not carry a patient ID")
		}
	default:
		return goerr.New("invalid session role", goerr.V("role", s.Role))
	}
	return nil
}
