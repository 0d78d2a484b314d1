package model

import (
	"fmt"
	"time"
)

// SourceKind describes where an import's raw input came from.
type SourceKind string

const (
	SourceTabular             SourceKind = "tabular"
	SourceFreeText            SourceKind = "free_text"
	SourceRecognizedImageText SourceKind = "recognized_image_text"
)

// Valid reports whether k is a known source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceTabular, SourceFreeText, SourceRecognizedImageText:
		return true
	default:
		return false
	}
}

// RawBlock is a contiguous run of non-blank lines assumed to describe one
// vendor.
type RawBlock struct {
	Index     int      `json:"index"`
	Text      string   `json:"text"`
	Lines     []string `json:"lines"`
	StartLine int      `json:"start_line"`
}

// Warnings is an append-only list of human-readable review warnings.
type Warnings []string

// Add appends a formatted warning.
func (w *Warnings) Add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// ImportSession summarizes one parse operation for the review screen.
type ImportSession struct {
	ID                 string     `json:"id" yaml:"id"`
	SourceKind         SourceKind `json:"source_kind" yaml:"source_kind"`
	SourceName         string     `json:"source_name,omitempty" yaml:"source_name,omitempty"`
	TotalLines         int        `json:"total_lines" yaml:"total_lines"`
	BlocksFound        int        `json:"blocks_found" yaml:"blocks_found"`
	VendorsExtracted   int        `json:"vendors_extracted" yaml:"vendors_extracted"`
	OverallConfidence  float64    `json:"overall_confidence" yaml:"overall_confidence"`
	LowConfidenceCount int        `json:"low_confidence_count" yaml:"low_confidence_count"`
	ExpectedCount      *int       `json:"expected_count,omitempty" yaml:"expected_count,omitempty"`
	Warnings           Warnings   `json:"warnings" yaml:"warnings"`
	CreatedAt          time.Time  `json:"created_at" yaml:"created_at"`
}

// ImportResult is the bundle returned by every parse operation.
type ImportResult struct {
	Candidates []VendorCandidate `json:"candidates" yaml:"candidates"`
	Session    ImportSession     `json:"session" yaml:"session"`
}
