// Package pattern is the default win verifier. The pattern predicate
// is a pluggable capability of the room store; this implementation
// validates the protocol-level legality of a claim: the label must be
// defined for the variant, every marked number must actually have
// been called, and the mark count must cover the pattern.
package pattern

import (
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

// Cell thresholds per claimable pattern. classic75 plays a 5x5 card
// with a free center; uk90 plays a 3x9 ticket with 5 numbers per row.
var thresholds = map[domain.Variant]map[string]int{
	domain.VariantClassic75: {
		"line":       5,
		"two_lines":  10,
		"corners":    4,
		"cross":      9,
		"full_house": 24,
	},
	domain.VariantUK90: {
		"line":       5,
		"two_lines":  10,
		"full_house": 15,
	},
}

type Verifier struct{}

func New() Verifier { return Verifier{} }

func (Verifier) Verify(claim core.WinClaim) bool {
	need, ok := thresholds[claim.Variant][claim.Pattern]
	if !ok {
		return false
	}
	if len(claim.Marked) < need {
		return false
	}
	called := make(map[int]bool, len(claim.Called))
	for _, n := range claim.Called {
		called[n] = true
	}
	for _, n := range claim.Marked {
		if !called[n] {
			return false
		}
	}
	return true
}
