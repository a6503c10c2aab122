package feed

import (
	"context"
	"sync"
	"time"

	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Event is one scheduled notification delivery. Role selects the feed:
// RoleDoctor delivers to the doctor feed, RolePatient to the patient's feed.
type Event struct {
	Role         types.Role
	PatientID    types.PatientID
	Notification *model.Notification
}

// Scheduler delivers one-shot timed events into feeds through a single
// inbound channel, so feed mutation logic stays independent of wall-clock
// timers. Events fire once per process and are never rescheduled.
type Scheduler struct {
	registry *Registry
	events   chan Event

	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	eg      *errgroup.Group
	started bool
}

// NewScheduler creates a scheduler delivering into the given registry
func NewScheduler(registry *Registry) *Scheduler {
	return &Scheduler{
		registry: registry,
		events:   make(chan Event, 16),
	}
}

// Start launches the dispatcher. It must be called once before ScheduleOnce.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.eg, _ = errgroup.WithContext(s.runCtx)

	runCtx := s.runCtx
	s.eg.Go(func() error {
		for {
			select {
			case <-runCtx.Done():
				return nil
			case ev := <-s.events:
				s.Deliver(runCtx, ev)
			}
		}
	})
}

// Stop cancels pending timers and waits for the dispatcher to drain
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	_ = s.eg.Wait()
	s.started = false
}

// ScheduleOnce arms a one-shot delivery after the given delay
func (s *Scheduler) ScheduleOnce(ctx context.Context, delay time.Duration, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		logging.From(ctx).Warn("scheduler not started, dropping event",
			"title", ev.Notification.Title)
		return
	}

	runCtx := s.runCtx
	s.eg.Go(func() error {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-runCtx.Done():
			return nil
		case <-timer.C:
			select {
			case s.events <- ev:
			case <-runCtx.Done():
			}
		}
		return nil
	})
}

// Deliver pushes one event into its target feed immediately. Exposed so
// tests and non-timer callers share the same delivery path.
func (s *Scheduler) Deliver(ctx context.Context, ev Event) {
	f := s.registry.ForSession(ev.Role, ev.PatientID)
	if f == nil {
		logging.From(ctx).Warn("event targets no feed, dropping",
			"role", ev.Role, "patient_id", ev.PatientID)
		return
	}
	f.Enqueue(ev.Notification)
}
