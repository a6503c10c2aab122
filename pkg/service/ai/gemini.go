package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/utils/safe"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"

// GeminiVision is a VisionClient over the Gemini generateContent REST API
type GeminiVision struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

var _ VisionClient = &GeminiVision{}

// GeminiOption is a functional option for GeminiVision
type GeminiOption func(*GeminiVision)

// WithEndpoint overrides the API endpoint, for tests
func WithEndpoint(endpoint string) GeminiOption {
	return func(c *GeminiVision) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiVision) {
		c.httpClient = client
	}
}

// NewGeminiVision creates a vision client for the given model
func NewGeminiVision(apiKey, model string, opts ...GeminiOption) (*GeminiVision, error) {
	if apiKey == "" {
		return nil, goerr.New("gemini API key is required")
	}
	if model == "" {
		return nil, goerr.New("gemini model is required")
	}

	c := &GeminiVision{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultGeminiEndpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends one prompt+image request and returns the text and
// image parts of the first candidate.
func (c *GeminiVision) GenerateContent(ctx context.Context, req *VisionRequest) (*VisionResponse, error) {
	parts := []geminiPart{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		mimeType := req.ImageMIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(req.Image),
			},
		})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}
	if req.JSONResponse {
		body.GenerationConfig = &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
		}
	}
	if req.ImageResponse {
		body.GenerationConfig = &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode gemini request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build gemini request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call gemini API")
	}
	defer safe.Close(ctx, httpResp.Body)

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read gemini response")
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode gemini response",
			goerr.V("status", httpResp.StatusCode))
	}
	if httpResp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, goerr.New("gemini API error",
				goerr.V("status", httpResp.StatusCode),
				goerr.V("message", parsed.Error.Message))
		}
		return nil, goerr.New("gemini API error", goerr.V("status", httpResp.StatusCode))
	}
	if len(parsed.Candidates) == 0 {
		return nil, goerr.New("gemini response has no candidates")
	}

	result := &VisionResponse{}
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.Texts = append(result.Texts, part.Text)
		}
		if part.InlineData != nil && part.InlineData.Data != "" {
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to decode gemini image part")
			}
			result.Images = append(result.Images, data)
		}
	}

	return result, nil
}
