package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the generative model clients: gollem over
// Vertex AI for chat, and the REST vision client for image operations.
type Gemini struct {
	projectID   string
	location    string
	apiKey      string
	visionModel string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini chat API",
			Sources:     cli.EnvVars("TELESKIN_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini chat API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TELESKIN_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key for image operations",
			Sources:     cli.EnvVars("TELESKIN_GEMINI_API_KEY"),
			Destination: &g.apiKey,
		},
		&cli.StringFlag{
			Name:        "gemini-vision-model",
			Usage:       "Gemini model used for image operations",
			Value:       "gemini-2.0-flash",
			Sources:     cli.EnvVars("TELESKIN_GEMINI_VISION_MODEL"),
			Destination: &g.visionModel,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Bool("api_key", g.apiKey != ""),
		slog.String("vision_model", g.visionModel),
	}
}

// ConfigureChat creates the gollem chat client. Returns nil when no project
// is configured; chat then answers with the offline fallback.
func (g *Gemini) ConfigureChat(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return client, nil
}

// ConfigureVision creates the image-capable REST client. Returns nil when no
// API key is configured; the image operations then take their fallbacks.
func (g *Gemini) ConfigureVision() (ai.VisionClient, error) {
	if g.apiKey == "" {
		return nil, nil
	}

	client, err := ai.NewGeminiVision(g.apiKey, g.visionModel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini vision client")
	}

	return client, nil
}
