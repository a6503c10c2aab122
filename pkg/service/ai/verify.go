package ai

import (
	"context"
	"strings"

	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

const verifyPrompt = `Does the attached photo show human skin, suitable as a dermatology check-in photo?
Answer with exactly one word: YES or NO.`

// VerifyIsSkinPhoto asks a strict yes/no question about the image and returns
// true iff the answer contains "YES".
//
// Fail-open: on transport failure the verification is treated as passed so a
// dependency outage never locks the patient out of dismissing the medication
// alarm. The bypass is logged.
func (g *Gateway) VerifyIsSkinPhoto(ctx context.Context, image []byte, mimeType string) bool {
	logger := logging.From(ctx)

	if g.vision == nil {
		logger.Warn("vision client not configured, photo verification passes open")
		return true
	}

	resp, err := g.vision.GenerateContent(ctx, &VisionRequest{
		Prompt:        verifyPrompt,
		Image:         image,
		ImageMIMEType: mimeType,
	})
	if err != nil {
		logger.Warn("photo verification failed, passing open", "error", err.Error())
		return true
	}
	if len(resp.Texts) == 0 {
		logger.Warn("photo verification returned no text, rejecting")
		return false
	}

	return strings.Contains(strings.ToUpper(resp.Texts[0]), "YES")
}
