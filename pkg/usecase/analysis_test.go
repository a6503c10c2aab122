package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/repository/memory"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
)

type stubVisionClient struct {
	resp *ai.VisionResponse
	err  error
}

func (c *stubVisionClient) GenerateContent(ctx context.Context, req *ai.VisionRequest) (*ai.VisionResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

// emptyFeeds returns a registry without the default seed notifications so
// tests can count exactly what the code under test enqueued.
func emptyFeeds() *feed.Registry {
	return feed.NewRegistry(
		feed.WithPatientSeed(func(types.PatientID) []*model.Notification { return nil }),
		feed.WithDoctorSeed(func() []*model.Notification { return nil }),
	)
}

func newAnalysisFixture(t *testing.T, vision ai.VisionClient, feeds *feed.Registry) (*usecase.AnalysisUseCase, *usecase.RecordUseCase, types.PatientID) {
	t.Helper()

	repo := memory.New()
	records := usecase.NewRecordUseCase(repo)
	gateway := ai.New(nil, vision)
	images, err := imagestore.NewLocal(t.TempDir())
	gt.NoError(t, err).Required()
	uc := usecase.NewAnalysisUseCase(repo, records, gateway, images, feeds)

	created, err := records.AddPatient(t.Context(), "Test Patient", 30, "Psoriasis")
	gt.NoError(t, err).Required()
	return uc, records, created.ID
}

func TestAnalyzePhoto(t *testing.T) {
	ctx := t.Context()
	photo := []byte("fake-jpeg-bytes")

	t.Run("classification result lands in history and drives the status", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{
			`{"diagnosis":"Psoriasis","confidence":0.91,"probabilities":{"Psoriasis":0.91,"Eczema":0.09},"severity":"High","features":["silvery scale"],"recommendations":["Continue phototherapy"]}`,
		}}}
		uc, _, id := newAnalysisFixture(t, vision, nil)

		rec, err := uc.AnalyzePhoto(ctx, id, photo, "image/jpeg", "weekly photo")
		gt.NoError(t, err).Required()

		gt.Array(t, rec.History).Length(1).Required()
		entry := rec.History[0]
		gt.Value(t, entry.Notes).Equal("weekly photo")
		gt.Value(t, entry.SeverityScore).Equal(types.SeverityScore(8))
		gt.Value(t, entry.Analysis).NotNil().Required()
		gt.Value(t, entry.Analysis.Diagnosis).Equal("Psoriasis")
		gt.String(t, entry.ImageRef).NotEqual("")
		gt.Value(t, rec.Status).Equal(types.PatientStatusCritical)
	})

	t.Run("gateway failure stores the fallback analysis instead of erroring", func(t *testing.T) {
		vision := &stubVisionClient{err: context.DeadlineExceeded}
		uc, _, id := newAnalysisFixture(t, vision, nil)

		rec, err := uc.AnalyzePhoto(ctx, id, photo, "image/jpeg", "")
		gt.NoError(t, err).Required()

		gt.Array(t, rec.History).Length(1).Required()
		gt.Value(t, rec.History[0].Analysis).Equal(ai.FallbackAnalysis())
		gt.Value(t, rec.History[0].SeverityScore).Equal(types.SeverityScore(2))
		gt.Value(t, rec.Status).Equal(types.PatientStatusImproving)
	})

	t.Run("critical result alerts the doctor feed", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{
			`{"diagnosis":"Melanoma","confidence":0.88,"probabilities":{"Melanoma":0.88},"severity":"Critical","features":[],"recommendations":["Immediate biopsy"]}`,
		}}}
		feeds := emptyFeeds()
		uc, _, id := newAnalysisFixture(t, vision, feeds)

		_, err := uc.AnalyzePhoto(ctx, id, photo, "image/jpeg", "")
		gt.NoError(t, err).Required()

		alerts := feeds.Doctor().List()
		gt.Array(t, alerts).Length(1).Required()
		gt.Value(t, alerts[0].Type).Equal(types.NotificationAlert)
	})

	t.Run("non-critical result leaves the doctor feed alone", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{
			`{"diagnosis":"Eczema","confidence":0.7,"probabilities":{"Eczema":0.7},"severity":"Low","features":[],"recommendations":[]}`,
		}}}
		feeds := emptyFeeds()
		uc, _, id := newAnalysisFixture(t, vision, feeds)

		_, err := uc.AnalyzePhoto(ctx, id, photo, "image/jpeg", "")
		gt.NoError(t, err).Required()
		gt.Array(t, feeds.Doctor().List()).Length(0)
	})

	t.Run("unknown patient is rejected before any gateway call", func(t *testing.T) {
		uc, _, _ := newAnalysisFixture(t, &stubVisionClient{}, nil)

		_, err := uc.AnalyzePhoto(ctx, "missing", photo, "image/jpeg", "")
		gt.Error(t, err)
	})

	t.Run("empty photo is rejected", func(t *testing.T) {
		uc, _, id := newAnalysisFixture(t, &stubVisionClient{}, nil)

		_, err := uc.AnalyzePhoto(ctx, id, nil, "image/jpeg", "")
		gt.Error(t, err)
	})
}

func TestCleanImage(t *testing.T) {
	ctx := t.Context()

	t.Run("returns the model's image part", func(t *testing.T) {
		cleaned := []byte("cleaned-image")
		vision := &stubVisionClient{resp: &ai.VisionResponse{Images: [][]byte{cleaned}}}
		uc, _, _ := newAnalysisFixture(t, vision, nil)

		got, err := uc.CleanImage(ctx, []byte("original"), "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(cleaned)
	})

	t.Run("nil when the model yields no image", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{"cannot"}}}
		uc, _, _ := newAnalysisFixture(t, vision, nil)

		got, err := uc.CleanImage(ctx, []byte("original"), "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("empty photo is rejected", func(t *testing.T) {
		uc, _, _ := newAnalysisFixture(t, &stubVisionClient{}, nil)

		_, err := uc.CleanImage(ctx, nil, "image/jpeg")
		gt.Error(t, err)
	})
}

func TestVerifyCheckIn(t *testing.T) {
	ctx := t.Context()
	photo := []byte("fake-jpeg-bytes")

	t.Run("verified photo dismisses the alarm and logs a zero-score entry", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{"YES"}}}
		feeds := emptyFeeds()
		uc, records, id := newAnalysisFixture(t, vision, feeds)

		dismissed, err := uc.VerifyCheckIn(ctx, id, photo, "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Bool(t, dismissed).True()

		rec, err := records.GetPatient(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, rec.History).Length(1).Required()
		gt.Value(t, rec.History[0].SeverityScore).Equal(types.SeverityScore(0))
		gt.Value(t, rec.Status).Equal(types.PatientStatusImproving)

		list := feeds.Patient(id).List()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].Title).Equal("Check-in confirmed")
	})

	t.Run("rejected photo leaves the record untouched", func(t *testing.T) {
		vision := &stubVisionClient{resp: &ai.VisionResponse{Texts: []string{"NO"}}}
		feeds := emptyFeeds()
		uc, records, id := newAnalysisFixture(t, vision, feeds)

		dismissed, err := uc.VerifyCheckIn(ctx, id, photo, "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Bool(t, dismissed).False()

		rec, err := records.GetPatient(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, rec.History).Length(0)
		gt.Array(t, feeds.Patient(id).List()).Length(0)
	})

	t.Run("verification fails open on transport failure", func(t *testing.T) {
		vision := &stubVisionClient{err: context.DeadlineExceeded}
		uc, _, id := newAnalysisFixture(t, vision, nil)

		dismissed, err := uc.VerifyCheckIn(ctx, id, photo, "image/jpeg")
		gt.NoError(t, err).Required()
		gt.Bool(t, dismissed).True()
	})

	t.Run("unknown patient is rejected", func(t *testing.T) {
		uc, _, _ := newAnalysisFixture(t, &stubVisionClient{}, nil)

		_, err := uc.VerifyCheckIn(ctx, "missing", photo, "image/jpeg")
		gt.Error(t, err)
	})
}
