// Package reconcile compares the number of extracted vendors against the
// count the uploader said to expect.
package reconcile

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

const (
	DefaultMinSlack   = 1
	DefaultSlackRatio = 0.3
)

// ErrInvalidExpected is returned for an expected count below one.
var ErrInvalidExpected = eris.New("reconcile: expected count must be a positive integer")

// Policy sets how far the extracted count may drift from the expected count
// before a warning is raised.
type Policy struct {
	MinSlack   int
	SlackRatio float64
}

// DefaultPolicy tolerates one vendor of drift for small batches and 30% for
// larger ones.
func DefaultPolicy() Policy {
	return Policy{MinSlack: DefaultMinSlack, SlackRatio: DefaultSlackRatio}
}

// Validate rejects a supplied expected count that is not positive. A nil
// count is valid.
func Validate(expected *int) error {
	if expected != nil && *expected < 1 {
		return eris.Wrapf(ErrInvalidExpected, "got %d", *expected)
	}
	return nil
}

// Tolerance returns the allowed drift for an expected count.
func (p Policy) Tolerance(expected int) float64 {
	return math.Max(float64(p.MinSlack), float64(expected)*p.SlackRatio)
}

// Check returns a count-mismatch warning and true when the extracted count
// drifts beyond tolerance. The check is advisory.
func (p Policy) Check(extracted int, expected *int) (string, bool) {
	if expected == nil {
		return "", false
	}

	want := *expected
	delta := extracted - want
	if delta < 0 {
		delta = -delta
	}
	if float64(delta) <= p.Tolerance(want) {
		return "", false
	}

	return fmt.Sprintf(
		"Expected %d vendors but extracted %d. Check the source file for merged or split entries, or accept the result as-is.",
		want, extracted,
	), true
}
