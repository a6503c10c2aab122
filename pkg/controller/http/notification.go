package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
)

// feedForRequest resolves the session's feed. Routes using it sit behind
// requireAuthenticated, so a nil feed does not happen in practice.
func feedForRequest(feeds *feed.Registry, r *http.Request) *feed.Feed {
	session := sessionFromRequest(r)
	return feeds.ForSession(session.Role, session.PatientID)
}

func listNotificationsHandler(feeds *feed.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := feedForRequest(feeds, r)
		if f == nil {
			respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]any{
			"notifications": f.List(),
			"unread_count":  f.UnreadCount(),
		})
	}
}

func markNotificationsReadHandler(feeds *feed.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := feedForRequest(feeds, r)
		if f == nil {
			respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		f.MarkAllRead()
		respondJSON(w, r, http.StatusOK, successResponse{Success: true})
	}
}

func deleteNotificationHandler(feeds *feed.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := feedForRequest(feeds, r)
		if f == nil {
			respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		id := types.NotificationID(chi.URLParam(r, "notificationID"))
		if !f.Delete(id) {
			respondError(w, r, http.StatusNotFound, "notification not found")
			return
		}
		respondJSON(w, r, http.StatusOK, successResponse{Success: true})
	}
}
