package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
)

// FallbackAnalysis returns the fixed fail-safe-low classification result.
// The UI never shows a blank state: on any failure the patient sees this
// result asking for manual review instead of an error.
func FallbackAnalysis() *model.AnalysisResult {
	return &model.AnalysisResult{
		Diagnosis:       "Analysis Failed",
		Confidence:      0,
		Probabilities:   map[string]float64{"Unknown": 1},
		Severity:        types.SeverityLow,
		Features:        []string{},
		Recommendations: []string{"Manual review required"},
	}
}

// classifyResponse mirrors the JSON object requested from the model
type classifyResponse struct {
	Diagnosis       string             `json:"diagnosis"`
	Confidence      float64            `json:"confidence"`
	Probabilities   map[string]float64 `json:"probabilities"`
	Severity        string             `json:"severity"`
	Features        []string           `json:"features"`
	Recommendations []string           `json:"recommendations"`
}

// Classify runs lesion classification on the image. Any transport, parse or
// validation failure yields the fallback result, never an error.
func (g *Gateway) Classify(ctx context.Context, image []byte, mimeType string) *model.AnalysisResult {
	logger := logging.From(ctx)

	if g.vision == nil {
		logger.Warn("vision client not configured, using fallback analysis")
		return FallbackAnalysis()
	}

	resp, err := g.vision.GenerateContent(ctx, &VisionRequest{
		Prompt:        g.buildClassifyPrompt(),
		Image:         image,
		ImageMIMEType: mimeType,
		JSONResponse:  true,
	})
	if err != nil {
		logger.Warn("lesion classification failed, using fallback analysis", "error", err.Error())
		return FallbackAnalysis()
	}
	if len(resp.Texts) == 0 {
		logger.Warn("lesion classification returned no text, using fallback analysis")
		return FallbackAnalysis()
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		logger.Warn("failed to parse classification response, using fallback analysis", "error", err.Error())
		return FallbackAnalysis()
	}

	result := &model.AnalysisResult{
		Diagnosis:       parsed.Diagnosis,
		Confidence:      parsed.Confidence,
		Probabilities:   parsed.Probabilities,
		Severity:        types.SeverityLabel(parsed.Severity),
		Features:        parsed.Features,
		Recommendations: parsed.Recommendations,
	}
	if result.Probabilities == nil {
		result.Probabilities = map[string]float64{}
	}
	if result.Features == nil {
		result.Features = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}

	if err := result.Validate(); err != nil {
		logger.Warn("classification response failed validation, using fallback analysis", "error", err.Error())
		return FallbackAnalysis()
	}

	return result
}

func (g *Gateway) buildClassifyPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are a dermatology image triage model. Analyze the attached skin photo.\n\n")
	sb.WriteString("Respond with a single JSON object with exactly these fields:\n")
	sb.WriteString(`- "diagnosis": the most likely condition name` + "\n")
	sb.WriteString(`- "confidence": number between 0 and 1` + "\n")
	sb.WriteString(`- "probabilities": object mapping condition names to numbers between 0 and 1` + "\n")
	sb.WriteString(`- "severity": one of "Low", "Moderate", "High", "Critical"` + "\n")
	sb.WriteString(`- "features": list of visual feature strings observed in the image` + "\n")
	sb.WriteString(`- "recommendations": list of short recommendation strings` + "\n")

	if len(g.conditions) > 0 {
		sb.WriteString("\nConsider at least these conditions for the probabilities map:\n")
		for _, c := range g.conditions {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}

	return sb.String()
}
