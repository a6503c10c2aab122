package ai

import "context"

// Speaker identifies who produced a chat message
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// IsValid checks if the speaker is valid
func (s Speaker) IsValid() bool {
	switch s {
	case SpeakerUser, SpeakerAssistant:
		return true
	default:
		return false
	}
}

// Message is one turn of a symptom-chat transcript
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// VisionRequest is a single image-in request to the vision model
type VisionRequest struct {
	Prompt        string
	Image         []byte
	ImageMIMEType string

	// JSONResponse asks the model for an application/json text part
	JSONResponse bool
	// ImageResponse asks the model to include an image part in the response
	ImageResponse bool
}

// VisionResponse holds the text and image parts of a vision model response
type VisionResponse struct {
	Texts  []string
	Images [][]byte
}

// VisionClient is the boundary to the image-capable generative model.
// Implementations translate requests into the remote API; they do not apply
// fallback policies, which belong to the Gateway.
type VisionClient interface {
	GenerateContent(ctx context.Context, req *VisionRequest) (*VisionResponse, error)
}
