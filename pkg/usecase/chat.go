package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
)

// ChatUseCase runs the patient symptom chat. The transcript lives in the
// browser; each turn replays it in full.
type ChatUseCase struct {
	gateway *ai.Gateway
}

func NewChatUseCase(gateway *ai.Gateway) *ChatUseCase {
	return &ChatUseCase{
		gateway: gateway,
	}
}

// Turn validates the new message and returns the assistant reply. Gateway
// failures come back as the fixed offline apology, not as errors.
func (uc *ChatUseCase) Turn(ctx context.Context, transcript []ai.Message, newMessage string) (string, error) {
	if strings.TrimSpace(newMessage) == "" {
		return "", goerr.New("message is empty")
	}
	for i, msg := range transcript {
		if !msg.Speaker.IsValid() {
			return "", goerr.New("invalid transcript speaker",
				goerr.V("index", i), goerr.V("speaker", msg.Speaker))
		}
	}

	return uc.gateway.ChatTurn(ctx, transcript, newMessage), nil
}
