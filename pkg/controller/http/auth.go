package http

import (
	"encoding/json"
	"net/http"

	"github.com/teleskin-lab/teleskin/pkg/domain/model/auth"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
	"github.com/teleskin-lab/teleskin/pkg/utils/errutil"
)

type patientCodeRequest struct {
	PatientID string `json:"patient_id"`
}

type patientVerifyRequest struct {
	PatientID string `json:"patient_id"`
	Code      string `json:"code"`
}

type doctorLoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Role       string `json:"role"`
	PatientID  string `json:"patient_id,omitempty"`
	DoctorName string `json:"doctor_name,omitempty"`
}

func sessionToResponse(s auth.Session) sessionResponse {
	return sessionResponse{
		Role:       s.Role.String(),
		PatientID:  s.PatientID.String(),
		DoctorName: s.DoctorName,
	}
}

// setAuthCookies stores the token pair in the browser. The pair restores the
// session across reloads without re-running the login flow.
func setAuthCookies(w http.ResponseWriter, r *http.Request, token *auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token_id",
		Value:    token.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "token_secret",
		Value:    token.Secret.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
}

func clearAuthCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"token_id", "token_secret"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// patientCodeHandler arms the one-time code (login step 1)
func patientCodeHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patientCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := authUC.StartPatientLogin(r.Context(), types.PatientID(req.PatientID)); err != nil {
			respondError(w, r, http.StatusBadRequest, "patient ID is required")
			return
		}

		respondJSON(w, r, http.StatusOK, successResponse{Success: true})
	}
}

// patientVerifyHandler completes login when the code matches (step 2)
func patientVerifyHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patientVerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		token, err := authUC.VerifyPatientCode(r.Context(), types.PatientID(req.PatientID), req.Code)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "verification failed, check the code and try again")
			return
		}

		setAuthCookies(w, r, token)
		respondJSON(w, r, http.StatusOK, sessionToResponse(token.Session))
	}
}

// patientResetHandler disarms a pending login back to step 1
func patientResetHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patientCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		authUC.ResetPatientLogin(r.Context(), types.PatientID(req.PatientID))
		respondJSON(w, r, http.StatusOK, successResponse{Success: true})
	}
}

func doctorLoginHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req doctorLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		token, err := authUC.LoginDoctor(r.Context(), req.Name, req.Password)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "login failed, check the name and password")
			return
		}

		setAuthCookies(w, r, token)
		respondJSON(w, r, http.StatusOK, sessionToResponse(token.Session))
	}
}

func logoutHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("token_id"); err == nil {
			if err := authUC.Logout(r.Context(), auth.TokenID(cookie.Value)); err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
				return
			}
		}

		clearAuthCookies(w, r)
		respondJSON(w, r, http.StatusOK, successResponse{Success: true})
	}
}

// meHandler reports the current session; anonymous requests get role none
// instead of an error so the frontend can branch on it.
func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		respondJSON(w, r, http.StatusOK, sessionToResponse(session))
	}
}
