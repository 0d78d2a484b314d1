package intake

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/store"
)

// ErrNoStore is returned by Commit when the service has no store.
var ErrNoStore = eris.New("intake: no store configured")

// CommitOutcome reports what happened to one candidate.
type CommitOutcome struct {
	Index   int    `json:"index" yaml:"index"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Err     error  `json:"-" yaml:"-"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether any outcome carries an error.
func Failed(outcomes []CommitOutcome) bool {
	for _, o := range outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// Commit saves the session and every candidate whose confidence is at least
// minConfidence in one store transaction. Candidates that fail validation are
// reported in their outcome and do not block the others. A store failure
// leaves neither the session nor any vendor behind.
func (s *Service) Commit(ctx context.Context, result *model.ImportResult, minConfidence float64) ([]CommitOutcome, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if result == nil {
		return nil, eris.New("intake: nil import result")
	}

	outcomes := make([]CommitOutcome, len(result.Candidates))
	var (
		valid   []model.Vendor
		indexes []int
	)
	for i, c := range result.Candidates {
		outcomes[i].Index = i
		if c.Confidence < minConfidence {
			outcomes[i].Skipped = true
			continue
		}

		v := model.VendorFromCandidate(result.Session.ID, c)
		if err := store.ValidateVendor(&v); err != nil {
			outcomes[i].Err = err
			outcomes[i].Error = err.Error()
			continue
		}
		valid = append(valid, v)
		indexes = append(indexes, i)
	}

	ids, err := s.store.SaveImport(ctx, &result.Session, valid)
	if err != nil {
		return nil, eris.Wrap(err, "intake: save import")
	}
	for j, id := range ids {
		outcomes[indexes[j]].ID = id
	}

	zap.L().Info("intake: committed vendors",
		zap.String("session_id", result.Session.ID),
		zap.Int("saved", len(ids)),
		zap.Int("candidates", len(result.Candidates)),
		zap.Float64("min_confidence", minConfidence),
	)
	return outcomes, nil
}
