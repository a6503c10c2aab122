package feed

import (
	"sync"

	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// Registry holds one feed per patient and one shared doctor feed.
// Feeds are created lazily with their seed sets on first access.
type Registry struct {
	mu       sync.Mutex
	patients map[types.PatientID]*Feed
	doctor   *Feed

	patientSeed func(types.PatientID) []*model.Notification
	doctorSeed  func() []*model.Notification
}

// RegistryOption is a functional option for Registry configuration
type RegistryOption func(*Registry)

// WithPatientSeed overrides the patient feed seed set
func WithPatientSeed(seed func(types.PatientID) []*model.Notification) RegistryOption {
	return func(r *Registry) {
		r.patientSeed = seed
	}
}

// WithDoctorSeed overrides the doctor feed seed set
func WithDoctorSeed(seed func() []*model.Notification) RegistryOption {
	return func(r *Registry) {
		r.doctorSeed = seed
	}
}

// NewRegistry creates a registry with the default seed sets
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		patients:    make(map[types.PatientID]*Feed),
		patientSeed: defaultPatientSeed,
		doctorSeed:  defaultDoctorSeed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Patient returns the feed for the given patient, creating it when absent
func (r *Registry) Patient(id types.PatientID) *Feed {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.patients[id]
	if !ok {
		f = New(r.patientSeed(id)...)
		r.patients[id] = f
	}
	return f
}

// Doctor returns the shared doctor portal feed
func (r *Registry) Doctor() *Feed {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doctor == nil {
		r.doctor = New(r.doctorSeed()...)
	}
	return r.doctor
}

// ForSession resolves the feed for an authenticated session, or nil for an
// anonymous one.
func (r *Registry) ForSession(role types.Role, patientID types.PatientID) *Feed {
	switch role {
	case types.RolePatient:
		return r.Patient(patientID)
	case types.RoleDoctor:
		return r.Doctor()
	default:
		return nil
	}
}

func defaultPatientSeed(types.PatientID) []*model.Notification {
	return []*model.Notification{
		model.NewNotification(types.NotificationReminder,
			"Medication reminder",
			"Time to apply your evening treatment. Take a photo check-in to confirm."),
		model.NewNotification(types.NotificationInfo,
			"Welcome back",
			"Your care team reviews new photos every weekday morning."),
	}
}

func defaultDoctorSeed() []*model.Notification {
	return []*model.Notification{
		model.NewNotification(types.NotificationInfo,
			"Queue ready",
			"Your patient queue has been refreshed."),
	}
}
