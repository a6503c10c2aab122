package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/interfaces"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

// AnalysisUseCase runs the photo flows: doctor-side lesion analysis, image
// cleanup and the patient medication check-in.
type AnalysisUseCase struct {
	repo    interfaces.Repository
	records *RecordUseCase
	gateway *ai.Gateway
	images  imagestore.Store
	feeds   *feed.Registry
}

func NewAnalysisUseCase(repo interfaces.Repository, records *RecordUseCase, gateway *ai.Gateway, images imagestore.Store, feeds *feed.Registry) *AnalysisUseCase {
	return &AnalysisUseCase{
		repo:    repo,
		records: records,
		gateway: gateway,
		images:  images,
		feeds:   feeds,
	}
}

// AnalyzePhoto classifies a lesion photo and appends the result to the
// patient's history. Classification never fails: on any gateway failure the
// stored analysis is the fixed fail-safe-low result.
func (uc *AnalysisUseCase) AnalyzePhoto(ctx context.Context, patientID types.PatientID, image []byte, mimeType, notes string) (*model.PatientRecord, error) {
	if len(image) == 0 {
		return nil, goerr.New("photo is required")
	}
	if _, err := uc.records.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	ref := uc.storePhoto(ctx, image, mimeType)
	result := uc.gateway.Classify(ctx, image, mimeType)

	entry := model.HistoryEntry{
		ImageRef:      ref,
		Notes:         notes,
		SeverityScore: result.Severity.Score(),
		Analysis:      result,
	}

	rec, err := uc.records.AddHistoryEntry(ctx, patientID, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record analysis", goerr.V("patient_id", patientID))
	}

	if uc.feeds != nil && result.Severity == types.SeverityCritical {
		uc.feeds.Doctor().Enqueue(model.NewNotification(types.NotificationAlert,
			"Critical finding",
			"Lesion analysis for patient "+patientID.String()+" came back critical."))
	}

	return rec, nil
}

// CleanImage returns a hair/reflection-removed version of the photo, or nil
// when the model yields no image. The caller shows the original in that case.
func (uc *AnalysisUseCase) CleanImage(ctx context.Context, image []byte, mimeType string) ([]byte, error) {
	if len(image) == 0 {
		return nil, goerr.New("photo is required")
	}
	return uc.gateway.CleanImage(ctx, image, mimeType), nil
}

// VerifyCheckIn handles the medication smart-alarm photo. When the photo
// verifies as skin (fail-open on outage), a zero-score check-in entry is
// appended, which also moves the status to Improving, and the patient gets a
// confirmation in their feed. It reports whether the alarm was dismissed.
func (uc *AnalysisUseCase) VerifyCheckIn(ctx context.Context, patientID types.PatientID, image []byte, mimeType string) (bool, error) {
	if len(image) == 0 {
		return false, goerr.New("photo is required")
	}
	if _, err := uc.records.GetPatient(ctx, patientID); err != nil {
		return false, err
	}

	if !uc.gateway.VerifyIsSkinPhoto(ctx, image, mimeType) {
		return false, nil
	}

	entry := model.HistoryEntry{
		ImageRef:      uc.storePhoto(ctx, image, mimeType),
		Notes:         "Medication check-in photo verified.",
		SeverityScore: 0,
	}
	if _, err := uc.records.AddHistoryEntry(ctx, patientID, entry); err != nil {
		return false, goerr.Wrap(err, "failed to record check-in", goerr.V("patient_id", patientID))
	}

	if uc.feeds != nil {
		uc.feeds.Patient(patientID).Enqueue(model.NewNotification(types.NotificationInfo,
			"Check-in confirmed",
			"Your medication photo was verified. Alarm dismissed."))
	}

	return true, nil
}

// storePhoto keeps the photo bytes out of the record. Storage failure is
// tolerated: the entry is kept without a reference.
func (uc *AnalysisUseCase) storePhoto(ctx context.Context, image []byte, mimeType string) string {
	if uc.images == nil {
		return ""
	}
	ref, err := uc.images.Put(ctx, image, mimeType)
	if err != nil {
		logging.From(ctx).Warn("failed to store photo, keeping entry without reference",
			"error", err.Error())
		return ""
	}
	return ref
}
