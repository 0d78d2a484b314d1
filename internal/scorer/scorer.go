// Package scorer computes per-candidate and batch confidence from field
// hits.
package scorer

import (
	"github.com/sells-group/vendor-intake/internal/model"
)

// DefaultLowThreshold is the confidence below which a candidate is flagged
// for review.
const DefaultLowThreshold = 0.5

// Scorer scores candidates by how many canonical fields were populated.
type Scorer struct {
	LowThreshold float64
}

// New returns a Scorer. A non-positive threshold selects the default.
func New(lowThreshold float64) Scorer {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowThreshold
	}
	return Scorer{LowThreshold: lowThreshold}
}

// Summary is the batch-level outcome of scoring.
type Summary struct {
	Overall  float64
	LowCount int
}

// Score returns the share of canonical fields (name, phone, email, address)
// that are present. Website and notes do not count.
func (s Scorer) Score(c model.VendorCandidate) float64 {
	canonical := model.CanonicalFields()
	hits := 0
	for _, f := range canonical {
		if c.FieldHits.Has(f) {
			hits++
		}
	}
	return clamp(float64(hits) / float64(len(canonical)))
}

// Overall returns the mean confidence, or 1.0 for an empty batch.
func (s Scorer) Overall(cs []model.VendorCandidate) float64 {
	if len(cs) == 0 {
		return 1.0
	}
	var sum float64
	for _, c := range cs {
		sum += c.Confidence
	}
	return clamp(sum / float64(len(cs)))
}

// IsLow reports whether conf falls below the review threshold.
func (s Scorer) IsLow(conf float64) bool {
	return conf < s.threshold()
}

// ScoreAll sets each candidate's confidence in place, unless fixed is true
// (tabular rows keep the confidence they were built with), and summarizes
// the batch.
func (s Scorer) ScoreAll(cs []model.VendorCandidate, fixed bool) Summary {
	var sum Summary
	for i := range cs {
		if !fixed {
			cs[i].Confidence = s.Score(cs[i])
		}
		if s.IsLow(cs[i].Confidence) {
			sum.LowCount++
		}
	}
	sum.Overall = s.Overall(cs)
	return sum
}

func (s Scorer) threshold() float64 {
	if s.LowThreshold <= 0 {
		return DefaultLowThreshold
	}
	return s.LowThreshold
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
