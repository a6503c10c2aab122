package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/gollem"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

// OfflineApology is returned for any chat failure instead of an error
const OfflineApology = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment, or contact your care team directly if this is urgent."

const chatSystemPrompt = `You are a dermatology telehealth assistant chatting with a patient.
Answer questions about skin symptoms, medication and photo check-ins in plain, reassuring language.
Never give a definitive diagnosis; recommend the patient's doctor for anything concerning.
Keep replies short, at most a few sentences.`

// ChatTurn sends one chat turn with the prior transcript and returns the
// assistant reply. On any transport or parse failure it returns the fixed
// offline apology, never an error.
func (g *Gateway) ChatTurn(ctx context.Context, transcript []Message, newMessage string) string {
	if g.llm == nil {
		return OfflineApology
	}

	session, err := g.llm.NewSession(ctx,
		gollem.WithSessionSystemPrompt(chatSystemPrompt),
	)
	if err != nil {
		logging.From(ctx).Warn("failed to create chat session, using offline fallback", "error", err.Error())
		return OfflineApology
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildChatPrompt(transcript, newMessage)))
	if err != nil {
		logging.From(ctx).Warn("chat turn failed, using offline fallback", "error", err.Error())
		return OfflineApology
	}
	if len(resp.Texts) == 0 || strings.TrimSpace(resp.Texts[0]) == "" {
		logging.From(ctx).Warn("chat turn returned no text, using offline fallback")
		return OfflineApology
	}

	return strings.TrimSpace(resp.Texts[0])
}

func buildChatPrompt(transcript []Message, newMessage string) string {
	var sb strings.Builder

	if len(transcript) > 0 {
		sb.WriteString("## Conversation so far:\n\n")
		for _, msg := range transcript {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Speaker, msg.Text)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## New message from the patient:\n\n")
	sb.WriteString(newMessage)
	sb.WriteString("\n\nReply to the new message.")

	return sb.String()
}
