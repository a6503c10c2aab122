package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/interfaces"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/model/auth"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/utils/async"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

// patientOTP is the fixed demo one-time code. There is no real credential
// check anywhere in this service.
const patientOTP = "1234"

// minDoctorPasswordLen is the placeholder doctor password rule
const minDoctorPasswordLen = 4

// AuthUseCase runs the two login flows and session token lifecycle.
// The OTP arming state is in-memory only: a restart drops every pending
// step-1 arm, while minted tokens survive in the repository.
type AuthUseCase struct {
	repo  interfaces.Repository
	feeds *feed.Registry

	mu    sync.Mutex
	armed map[types.PatientID]struct{}

	dispatchDelay time.Duration
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithDispatchDelay overrides the simulated OTP dispatch delay
func WithDispatchDelay(d time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.dispatchDelay = d
	}
}

func NewAuthUseCase(repo interfaces.Repository, feeds *feed.Registry, opts ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:          repo,
		feeds:         feeds,
		armed:         make(map[types.PatientID]struct{}),
		dispatchDelay: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// StartPatientLogin arms the one-time code for the patient and simulates
// its dispatch by pushing a notification into the patient's feed after a
// short delay. No real channel is involved.
func (uc *AuthUseCase) StartPatientLogin(ctx context.Context, patientID types.PatientID) error {
	if err := patientID.Validate(); err != nil {
		return goerr.Wrap(err, "patient ID is required")
	}

	uc.mu.Lock()
	uc.armed[patientID] = struct{}{}
	uc.mu.Unlock()

	if uc.feeds != nil {
		delay := uc.dispatchDelay
		f := uc.feeds.Patient(patientID)
		async.Dispatch(ctx, func(ctx context.Context) error {
			time.Sleep(delay)
			f.Enqueue(model.NewNotification(types.NotificationMessage,
				"Verification code",
				"Your login code is "+patientOTP+"."))
			return nil
		})
	}

	return nil
}

// VerifyPatientCode completes login when the typed code matches the fixed
// code and the step-1 arm is still active. A successful verify consumes the
// arm, so re-submitting the same code without re-arming fails.
func (uc *AuthUseCase) VerifyPatientCode(ctx context.Context, patientID types.PatientID, code string) (*auth.Token, error) {
	if err := patientID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "patient ID is required")
	}

	uc.mu.Lock()
	_, isArmed := uc.armed[patientID]
	if isArmed && code == patientOTP {
		delete(uc.armed, patientID)
	}
	uc.mu.Unlock()

	if !isArmed {
		return nil, goerr.New("no active login attempt, request a new code",
			goerr.V("patient_id", patientID))
	}
	if code != patientOTP {
		return nil, goerr.New("verification code does not match",
			goerr.V("patient_id", patientID))
	}

	return uc.mintToken(ctx, auth.NewPatientSession(patientID))
}

// ResetPatientLogin disarms a pending login attempt back to step 1
func (uc *AuthUseCase) ResetPatientLogin(ctx context.Context, patientID types.PatientID) {
	uc.mu.Lock()
	delete(uc.armed, patientID)
	uc.mu.Unlock()
}

// LoginDoctor accepts any name with a password longer than three
// characters. The rule is an explicit placeholder.
func (uc *AuthUseCase) LoginDoctor(ctx context.Context, name, password string) (*auth.Token, error) {
	if name == "" {
		return nil, goerr.New("doctor name is required")
	}
	if len(password) < minDoctorPasswordLen {
		return nil, goerr.New("password is too short")
	}

	return uc.mintToken(ctx, auth.NewDoctorSession(name))
}

// ValidateToken restores a session from the browser's cookie pair without
// re-checking the OTP or password. Expired tokens are deleted on sight.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token")
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(err, "token is not registered", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token", goerr.V("token_id", tokenID))
	}

	if token.Secret != secret {
		return nil, goerr.New("token secret mismatch", goerr.V("token_id", tokenID))
	}

	if token.IsExpired(time.Now()) {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			logging.From(ctx).Warn("failed to delete expired token",
				"token_id", tokenID, "error", err.Error())
		}
		return nil, goerr.New("token is expired", goerr.V("token_id", tokenID))
	}

	return token, nil
}

// Logout deletes the token. The restored state afterwards is role none.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}
	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}

func (uc *AuthUseCase) mintToken(ctx context.Context, session auth.Session) (*auth.Token, error) {
	token := auth.NewToken(session)
	if err := token.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to mint token")
	}
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to persist token", goerr.V("token_id", token.ID))
	}
	return token, nil
}
