package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/scorer"
)

const (
	emptyResultWarning = "No vendor entries were found in the source. Check that entries are separated by a blank gap or that the file has data rows."
	recognitionWarning = "Text recognition failed, so no vendors could be extracted from the image: %v"
)

// AggregateInput carries everything the session aggregator needs from the
// earlier stages.
type AggregateInput struct {
	Kind        model.SourceKind
	SourceName  string
	TotalLines  int
	BlocksFound int
	Candidates  []model.VendorCandidate
	Summary     scorer.Summary
	Expected    *int

	// RecognitionErr is set when image recognition failed upstream.
	RecognitionErr error
	// MismatchWarning is the reconciler's warning, if any.
	MismatchWarning string
}

// Aggregate assembles the output bundle. Candidate order is preserved as
// given. An empty batch reports full overall confidence regardless of the
// summary passed in. Warnings are appended in a fixed order: empty result, recognition
// failure, count mismatch.
func Aggregate(in AggregateInput) model.ImportResult {
	candidates := in.Candidates
	if candidates == nil {
		candidates = []model.VendorCandidate{}
	}
	summary := in.Summary
	if len(candidates) == 0 {
		summary = scorer.Summary{Overall: 1}
	}

	session := model.ImportSession{
		ID:                 uuid.New().String(),
		SourceKind:         in.Kind,
		SourceName:         in.SourceName,
		TotalLines:         in.TotalLines,
		BlocksFound:        in.BlocksFound,
		VendorsExtracted:   len(candidates),
		OverallConfidence:  summary.Overall,
		LowConfidenceCount: summary.LowCount,
		ExpectedCount:      in.Expected,
		Warnings:           model.Warnings{},
		CreatedAt:          time.Now().UTC(),
	}

	if len(candidates) == 0 {
		session.Warnings.Add(emptyResultWarning)
	}
	if in.RecognitionErr != nil {
		session.Warnings.Add(recognitionWarning, in.RecognitionErr)
	}
	if in.MismatchWarning != "" {
		session.Warnings.Add("%s", in.MismatchWarning)
	}

	return model.ImportResult{
		Candidates: candidates,
		Session:    session,
	}
}
