package matcher

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Scorer ranks one searchable column against a compiled pattern. Higher
// scores are better matches. Implementations must be deterministic for
// identical (pattern, column) input.
type Scorer interface {
	// Score returns the match quality for a single column; ok is false
	// when the column does not match the pattern at all.
	Score(p Pattern, col *Column) (score int, ok bool)
}

// Slab sizes for fzf's reusable scoring buffers, reused across calls so
// matching a large candidate set does not allocate per item.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

// FzfScorer scores with fzf's FuzzyMatchV2 algorithm. It holds a scratch
// slab, so one instance must not be shared between goroutines; the
// engine worker owns exactly one.
type FzfScorer struct {
	slab *util.Slab
}

// NewFzfScorer creates a scorer with its own scratch slab.
func NewFzfScorer() *FzfScorer {
	return &FzfScorer{slab: util.MakeSlab(slab16Size, slab32Size)}
}

// Score implements Scorer. Case folding happened at compile/insertion
// time, so the algorithm always runs case-sensitively against the
// matching column projection. Normalization is off for the same reason:
// both sides were folded up front.
func (s *FzfScorer) Score(p Pattern, col *Column) (int, bool) {
	chars := &col.Lower
	if p.CaseSensitive() {
		chars = &col.Text
	}

	result, _ := algo.FuzzyMatchV2(true, false, true, chars, p.Runes(), false, s.slab)
	if result.Start < 0 {
		return 0, false
	}
	return result.Score, true
}
