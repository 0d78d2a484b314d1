// Package pipeline runs the vendor extraction pipeline: segmentation, field
// extraction, confidence scoring, count reconciliation and session
// aggregation. Every call is synchronous and independent; a Pipeline holds
// only read-only configuration and may be shared across goroutines.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/extract"
	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/reconcile"
	"github.com/sells-group/vendor-intake/internal/scorer"
	"github.com/sells-group/vendor-intake/internal/segment"
)

// Pipeline converts raw input into scored, reconciled vendor candidates.
type Pipeline struct {
	extractor *extract.Extractor
	scorer    scorer.Scorer
	policy    reconcile.Policy
}

// New creates a Pipeline. A nil extractor gets a default one.
func New(ex *extract.Extractor, sc scorer.Scorer, policy reconcile.Policy) *Pipeline {
	if ex == nil {
		ex = extract.New()
	}
	return &Pipeline{extractor: ex, scorer: sc, policy: policy}
}

// Default creates a Pipeline with default thresholds and no logo table.
func Default() *Pipeline {
	return New(extract.New(), scorer.New(scorer.DefaultLowThreshold), reconcile.DefaultPolicy())
}

// ParseText extracts vendors from free text.
func (p *Pipeline) ParseText(text string, expected *int) (*model.ImportResult, error) {
	return p.parseText(model.SourceFreeText, text, nil, expected)
}

// ParseRecognized extracts vendors from text produced by image recognition.
// A non-nil recErr means no text was available: the result is empty and
// carries a warning instead of failing.
func (p *Pipeline) ParseRecognized(text string, recErr error, expected *int) (*model.ImportResult, error) {
	if recErr != nil {
		text = ""
	}
	return p.parseText(model.SourceRecognizedImageText, text, recErr, expected)
}

func (p *Pipeline) parseText(kind model.SourceKind, text string, recErr error, expected *int) (*model.ImportResult, error) {
	if err := reconcile.Validate(expected); err != nil {
		return nil, err
	}

	seg := segment.Segment(text)

	candidates := make([]model.VendorCandidate, 0, len(seg.Blocks))
	for _, b := range seg.Blocks {
		candidates = append(candidates, p.extractor.FromBlock(b))
	}

	return p.finish(AggregateInput{
		Kind:           kind,
		TotalLines:     seg.TotalLines,
		BlocksFound:    len(seg.Blocks),
		Candidates:     candidates,
		Expected:       expected,
		RecognitionErr: recErr,
	}, false), nil
}

// ParseRows maps pre-parsed tabular rows onto candidates. Row candidates
// keep their fixed confidence of 1.0.
func (p *Pipeline) ParseRows(rows []model.Row, expected *int) (*model.ImportResult, error) {
	if err := reconcile.Validate(expected); err != nil {
		return nil, err
	}

	candidates := make([]model.VendorCandidate, 0, len(rows))
	for i, row := range rows {
		candidates = append(candidates, p.extractor.FromRow(i, row))
	}

	return p.finish(AggregateInput{
		Kind:        model.SourceTabular,
		TotalLines:  len(rows),
		BlocksFound: len(rows),
		Candidates:  candidates,
		Expected:    expected,
	}, true), nil
}

func (p *Pipeline) finish(in AggregateInput, fixed bool) *model.ImportResult {
	in.Summary = p.scorer.ScoreAll(in.Candidates, fixed)
	if msg, ok := p.policy.Check(len(in.Candidates), in.Expected); ok {
		in.MismatchWarning = msg
	}

	res := Aggregate(in)

	zap.L().Debug("pipeline: parse complete",
		zap.String("source_kind", string(res.Session.SourceKind)),
		zap.Int("total_lines", res.Session.TotalLines),
		zap.Int("blocks", res.Session.BlocksFound),
		zap.Int("vendors", res.Session.VendorsExtracted),
		zap.Float64("overall_confidence", res.Session.OverallConfidence),
		zap.Int("warnings", len(res.Session.Warnings)),
	)
	return &res
}
