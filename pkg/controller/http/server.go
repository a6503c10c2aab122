package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
	"github.com/teleskin-lab/teleskin/pkg/utils/errutil"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	feeds  *feed.Registry
	images imagestore.Store
}

type Options func(*Server)

// WithImageStore enables serving stored check-in photos
func WithImageStore(images imagestore.Store) Options {
	return func(s *Server) {
		s.images = images
	}
}

func New(uc *usecase.UseCases, feeds *feed.Registry, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		feeds:  feeds,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(sessionMiddleware(uc.Auth))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/patient/code", patientCodeHandler(uc.Auth))
			r.Post("/patient/verify", patientVerifyHandler(uc.Auth))
			r.Post("/patient/reset", patientResetHandler(uc.Auth))
			r.Post("/doctor/login", doctorLoginHandler(uc.Auth))
			r.Post("/logout", logoutHandler(uc.Auth))
			r.Get("/me", meHandler())
		})

		r.Route("/patients", func(r chi.Router) {
			r.With(requireRole(types.RoleDoctor)).Get("/", listPatientsHandler(uc.Record))
			r.With(requireRole(types.RoleDoctor)).Post("/", addPatientHandler(uc.Record))

			r.Route("/{patientID}", func(r chi.Router) {
				r.With(requirePatientAccess()).Get("/", getPatientHandler(uc.Record))
				r.With(requireRole(types.RoleDoctor)).Post("/entries", addEntryHandler(uc.Record))
				r.With(requireRole(types.RoleDoctor)).Post("/analyze", analyzeHandler(uc.Analysis))
			})
		})

		r.With(requireRole(types.RoleDoctor)).Post("/images/clean", cleanImageHandler(uc.Analysis))
		r.With(requireRole(types.RolePatient)).Post("/checkins/verify", verifyCheckInHandler(uc.Analysis))
		r.With(requireRole(types.RolePatient)).Post("/chat", chatHandler(uc.Chat))

		r.Route("/notifications", func(r chi.Router) {
			r.Use(requireAuthenticated())
			r.Get("/", listNotificationsHandler(s.feeds))
			r.Post("/read", markNotificationsReadHandler(s.feeds))
			r.Delete("/{notificationID}", deleteNotificationHandler(s.feeds))
		})

		if s.images != nil {
			r.With(requireAuthenticated()).Get("/images/{ref}", imageHandler(s.images))
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, r, status, errorResponse{Error: msg})
}
