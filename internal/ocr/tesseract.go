package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Tesseract recognizes text with a local tesseract binary.
type Tesseract struct {
	binPath  string
	language string
}

// NewTesseract creates a Tesseract recognizer. Empty arguments fall back to
// "tesseract" on PATH and English.
func NewTesseract(binPath, language string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{binPath: binPath, language: language}
}

// Recognize pipes the image to tesseract on stdin and returns stdout.
func (t *Tesseract) Recognize(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", eris.Errorf("ocr: image %s is empty", img.Name)
	}

	cmd := exec.CommandContext(ctx, t.binPath, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(img.Data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: tesseract failed for %s: %s", img.Name, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
