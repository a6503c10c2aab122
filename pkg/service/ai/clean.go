package ai

import (
	"context"

	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

const cleanPrompt = `Remove hair and light reflections from the attached skin photo so the lesion is clearly visible.
Do not alter the lesion itself in any way. Return the cleaned image.`

// CleanImage requests a hair/reflection-removed version of the image.
// Returns nil when the model returns no image part or on any failure.
func (g *Gateway) CleanImage(ctx context.Context, image []byte, mimeType string) []byte {
	logger := logging.From(ctx)

	if g.vision == nil {
		logger.Warn("vision client not configured, skipping image cleanup")
		return nil
	}

	resp, err := g.vision.GenerateContent(ctx, &VisionRequest{
		Prompt:        cleanPrompt,
		Image:         image,
		ImageMIMEType: mimeType,
		ImageResponse: true,
	})
	if err != nil {
		logger.Warn("image cleanup failed", "error", err.Error())
		return nil
	}
	if len(resp.Images) == 0 || len(resp.Images[0]) == 0 {
		logger.Warn("image cleanup returned no image part")
		return nil
	}

	return resp.Images[0]
}
