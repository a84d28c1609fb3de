package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

func TestVerify(t *testing.T) {
	seq := func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
		return out
	}

	cases := []struct {
		name    string
		variant domain.Variant
		pattern string
		marked  []int
		called  []int
		want    bool
	}{
		{
			name:    "line accepted",
			variant: domain.VariantClassic75,
			pattern: "line",
			marked:  []int{3, 9, 17, 24, 31},
			called:  []int{3, 9, 17, 24, 31, 40},
			want:    true,
		},
		{
			name:    "line short of cells",
			variant: domain.VariantClassic75,
			pattern: "line",
			marked:  []int{3, 9, 17, 24},
			called:  []int{3, 9, 17, 24},
			want:    false,
		},
		{
			name:    "mark never called",
			variant: domain.VariantClassic75,
			pattern: "line",
			marked:  []int{3, 9, 17, 24, 31},
			called:  []int{3, 9, 17, 24},
			want:    false,
		},
		{
			name:    "unknown pattern label",
			variant: domain.VariantClassic75,
			pattern: "diagonal",
			marked:  []int{3, 9, 17, 24, 31},
			called:  []int{3, 9, 17, 24, 31},
			want:    false,
		},
		{
			name:    "corners accepted",
			variant: domain.VariantClassic75,
			pattern: "corners",
			marked:  []int{1, 15, 61, 75},
			called:  []int{1, 15, 61, 75},
			want:    true,
		},
		{
			name:    "corners not a uk90 pattern",
			variant: domain.VariantUK90,
			pattern: "corners",
			marked:  []int{1, 15, 61, 75},
			called:  []int{1, 15, 61, 75},
			want:    false,
		},
		{
			name:    "uk90 full house accepted",
			variant: domain.VariantUK90,
			pattern: "full_house",
			marked:  seq(1, 15),
			called:  seq(1, 20),
			want:    true,
		},
		{
			name:    "classic75 full house needs the whole card",
			variant: domain.VariantClassic75,
			pattern: "full_house",
			marked:  seq(1, 23),
			called:  seq(1, 30),
			want:    false,
		},
		{
			name:    "unknown variant",
			variant: domain.Variant("roulette"),
			pattern: "line",
			marked:  []int{1, 2, 3, 4, 5},
			called:  []int{1, 2, 3, 4, 5},
			want:    false,
		},
		{
			name:    "empty claim",
			variant: domain.VariantClassic75,
			pattern: "line",
			marked:  nil,
			called:  nil,
			want:    false,
		},
	}

	v := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Verify(core.WinClaim{
				Pattern: tc.pattern,
				Variant: tc.variant,
				Marked:  tc.marked,
				Called:  tc.called,
			})
			assert.Equal(t, tc.want, got)
		})
	}
}
