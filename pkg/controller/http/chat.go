package http

import (
	"encoding/json"
	"net/http"

	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
)

type chatRequest struct {
	Transcript []ai.Message `json:"transcript"`
	Message    string       `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// chatHandler runs one symptom-chat turn. The transcript is owned by the
// browser and replayed in full on every request.
func chatHandler(chat *usecase.ChatUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := chat.Turn(r.Context(), req.Transcript, req.Message)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "message is required")
			return
		}
		respondJSON(w, r, http.StatusOK, chatResponse{Reply: reply})
	}
}
