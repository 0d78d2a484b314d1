package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCheck(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	tests := []struct {
		name      string
		extracted int
		expected  *int
		wantWarn  bool
	}{
		{"no expected count", 3, nil, false},
		{"exact match", 10, intPtr(10), false},
		{"under by four of ten", 6, intPtr(10), true},
		{"under by one of ten", 9, intPtr(10), false},
		{"over by three of ten", 13, intPtr(10), false},
		{"over by four of ten", 14, intPtr(10), true},
		{"small batch slack of one", 2, intPtr(1), false},
		{"small batch beyond slack", 3, intPtr(1), true},
		{"zero extracted", 0, intPtr(2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, warn := p.Check(tt.extracted, tt.expected)
			assert.Equal(t, tt.wantWarn, warn)
			if warn {
				assert.Contains(t, msg, "Expected")
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestCheck_MessageIncludesBothCounts(t *testing.T) {
	t.Parallel()

	msg, warn := DefaultPolicy().Check(6, intPtr(10))
	require.True(t, warn)
	assert.Contains(t, msg, "10")
	assert.Contains(t, msg, "6")
}

func TestCheck_CustomPolicy(t *testing.T) {
	t.Parallel()

	strict := Policy{MinSlack: 0, SlackRatio: 0}
	_, warn := strict.Check(9, intPtr(10))
	assert.True(t, warn)

	loose := Policy{MinSlack: 5, SlackRatio: 0.1}
	assert.InDelta(t, 5.0, loose.Tolerance(10), 0.0001)
	_, warn = loose.Check(6, intPtr(10))
	assert.False(t, warn)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(nil))
	require.NoError(t, Validate(intPtr(1)))

	err := Validate(intPtr(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidExpected))

	err = Validate(intPtr(-3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-3")
}
