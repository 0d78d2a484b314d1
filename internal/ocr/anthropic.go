package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-intake/internal/resilience"
	"github.com/sells-group/vendor-intake/pkg/anthropic"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

const transcribePrompt = `Transcribe all text visible in this image exactly as written.
Keep one entry per line and separate distinct companies or contacts with a blank line.
Output only the transcription, with no commentary.`

// AnthropicVision recognizes text with a Claude vision model.
type AnthropicVision struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicVision creates an AnthropicVision recognizer. If model is
// empty, the default is used.
func NewAnthropicVision(client anthropic.Client, model string) *AnthropicVision {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicVision{client: client, model: model, maxTokens: 4096}
}

// Recognize sends the image with a transcription prompt and returns the
// model's text.
func (a *AnthropicVision) Recognize(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", eris.Errorf("ocr: image %s is empty", img.Name)
	}
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = MediaTypeOf(img.Name)
	}
	if mediaType == "" {
		return "", eris.Errorf("ocr: unknown media type for %s", img.Name)
	}

	temp := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: transcribePrompt,
			Images:  []anthropic.Image{{MediaType: mediaType, Data: img.Data}},
		}},
	})
	if err != nil {
		wrapped := eris.Wrapf(err, "ocr: anthropic vision for %s", img.Name)
		if code := anthropic.APIStatus(err); resilience.IsTransientHTTPStatus(code) {
			return "", resilience.NewTransientError(wrapped, code)
		}
		return "", wrapped
	}

	resp.Usage.LogCost(a.model, img.Name)
	return resp.Text(), nil
}
