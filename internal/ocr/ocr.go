// Package ocr turns vendor images such as business cards and scanned lists
// into plain text.
package ocr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-intake/internal/config"
	"github.com/sells-group/vendor-intake/internal/resilience"
	"github.com/sells-group/vendor-intake/pkg/anthropic"
)

// Image is an uploaded image awaiting recognition.
type Image struct {
	Name      string
	MediaType string
	Data      []byte
}

// Recognizer extracts the text visible in an image.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img Image) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img Image) (string, error) {
	return f(ctx, img)
}

var mediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// MediaTypeOf returns the image media type for a file name, or "" when the
// extension is not a supported image.
func MediaTypeOf(name string) string {
	return mediaTypes[strings.ToLower(filepath.Ext(name))]
}

// NewImage builds an Image, inferring the media type from the name.
func NewImage(name string, data []byte) Image {
	return Image{Name: name, MediaType: MediaTypeOf(name), Data: data}
}

// NewRecognizer creates a Recognizer based on config. Hosted providers are
// rate limited, retried and guarded by a circuit breaker.
func NewRecognizer(cfg config.OCRConfig) (Recognizer, error) {
	var (
		r        Recognizer
		provider = cfg.Provider
	)

	switch provider {
	case "tesseract", "":
		return NewTesseract(cfg.TesseractPath, cfg.Language), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		r = NewMistralOCR(cfg.MistralKey, cfg.MistralModel)
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, eris.New("ocr: anthropic provider requires anthropic_api_key")
		}
		r = NewAnthropicVision(anthropic.NewClient(cfg.AnthropicKey), cfg.AnthropicModel)
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}

	r = WithRateLimit(r, cfg.RequestsPerSecond)
	r = WithRetry(r, provider, cfg.MaxAttempts)
	return WithBreaker(r, resilience.BreakerConfig{
		Name:      provider,
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
	}), nil
}
