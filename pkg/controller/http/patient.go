package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
	"github.com/teleskin-lab/teleskin/pkg/utils/errutil"
	"github.com/teleskin-lab/teleskin/pkg/utils/safe"
)

const maxPhotoSize = 10 << 20

type addPatientRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

type addEntryRequest struct {
	Date          *time.Time `json:"date,omitempty"`
	Notes         string     `json:"notes"`
	SeverityScore int        `json:"severity_score"`
}

func listPatientsHandler(records *usecase.RecordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients, err := records.ListPatients(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"patients": patients})
	}
}

func addPatientHandler(records *usecase.RecordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := records.AddPatient(r.Context(), req.Name, req.Age, req.Condition)
		if err != nil {
			if errors.Is(err, model.ErrInvalidInput) {
				respondError(w, r, http.StatusBadRequest, "invalid patient fields")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, http.StatusCreated, created)
	}
}

func getPatientHandler(records *usecase.RecordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.PatientID(chi.URLParam(r, "patientID"))

		rec, err := records.GetPatient(r.Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				respondError(w, r, http.StatusNotFound, "patient not found")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, http.StatusOK, rec)
	}
}

func addEntryHandler(records *usecase.RecordUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.PatientID(chi.URLParam(r, "patientID"))

		var req addEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		entry := model.HistoryEntry{
			Notes:         req.Notes,
			SeverityScore: types.SeverityScore(req.SeverityScore),
		}
		if req.Date != nil {
			entry.Date = *req.Date
		}

		updated, err := records.AddHistoryEntry(r.Context(), id, entry)
		if err != nil {
			if errors.Is(err, model.ErrInvalidInput) {
				respondError(w, r, http.StatusBadRequest, "invalid history entry")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		if updated == nil {
			respondError(w, r, http.StatusNotFound, "patient not found")
			return
		}
		respondJSON(w, r, http.StatusCreated, updated)
	}
}

func analyzeHandler(analysis *usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.PatientID(chi.URLParam(r, "patientID"))

		photo, mimeType, err := readPhoto(r)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "photo upload is required")
			return
		}

		rec, err := analysis.AnalyzePhoto(r.Context(), id, photo, mimeType, r.FormValue("notes"))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				respondError(w, r, http.StatusNotFound, "patient not found")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, http.StatusOK, rec)
	}
}

func cleanImageHandler(analysis *usecase.AnalysisUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, mimeType, err := readPhoto(r)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "photo upload is required")
			return
		}

		cleaned, err := analysis.CleanImage(r.Context(), photo, mimeType)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		if cleaned == nil {
			// No cleaned variant; the caller keeps showing the original
			respondJSON(w, r, http.StatusOK, map[string]any{"cleaned": false})
			return
		}

		w.Header().Set("Content-Type", mimeType)
		w.Write(cleaned) //nolint:errcheck // header already committed
	}
}

func verifyCheckInHandler(analysis *usecase.AnalysisUseCase) http.HandlerFunc {
	type response struct {
		Verified bool `json:"verified"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromRequest(r)

		photo, mimeType, err := readPhoto(r)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "photo upload is required")
			return
		}

		verified, err := analysis.VerifyCheckIn(r.Context(), session.PatientID, photo, mimeType)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				respondError(w, r, http.StatusNotFound, "patient not found")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, http.StatusOK, response{Verified: verified})
	}
}

func imageHandler(images imagestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")

		data, mimeType, err := images.Get(r.Context(), ref)
		if err != nil {
			if errors.Is(err, imagestore.ErrNotFound) {
				respondError(w, r, http.StatusNotFound, "image not found")
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", mimeType)
		w.Write(data) //nolint:errcheck // header already committed
	}
}

// readPhoto extracts the uploaded photo from the multipart form
func readPhoto(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return nil, "", goerr.Wrap(err, "failed to parse multipart form")
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, "", goerr.Wrap(err, "photo field is missing")
	}
	defer safe.Close(r.Context(), file)

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read photo")
	}
	if len(data) == 0 {
		return nil, "", goerr.New("photo is empty")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
