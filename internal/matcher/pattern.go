package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pattern is the compiled, normalized form of a query string. Compilation
// is side-effect free; compiling the same query twice yields equivalent
// patterns.
type Pattern struct {
	raw           string
	runes         []rune // folded query runes, lowercased unless case-sensitive
	caseSensitive bool
	matchNothing  bool
}

// CompilePattern turns a raw query into a matchable pattern. The rules:
//   - surrounding whitespace is trimmed
//   - an empty (or all-whitespace) query matches every item with a
//     neutral score
//   - any uppercase rune makes matching case-sensitive ("smart" case)
//   - control characters yield a pattern that matches nothing, never an
//     error
func CompilePattern(query string) Pattern {
	p := Pattern{raw: query}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return p
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			p.matchNothing = true
			return p
		}
	}

	p.caseSensitive = strings.IndexFunc(trimmed, unicode.IsUpper) >= 0

	folded := FoldText(trimmed)
	if !p.caseSensitive {
		folded = strings.ToLower(folded)
	}
	p.runes = []rune(folded)

	return p
}

// Raw returns the query string the pattern was compiled from.
func (p Pattern) Raw() string { return p.raw }

// Runes returns the folded pattern runes scorers match against.
func (p Pattern) Runes() []rune { return p.runes }

// CaseSensitive reports whether comparisons preserve case.
func (p Pattern) CaseSensitive() bool { return p.caseSensitive }

// IsEmpty reports whether the pattern matches every item.
func (p Pattern) IsEmpty() bool { return len(p.runes) == 0 && !p.matchNothing }

// MatchNothing reports whether the pattern matches no item at all.
func (p Pattern) MatchNothing() bool { return p.matchNothing }

// FoldText normalizes text for matching: compatibility decomposition
// (which also folds full-width forms), combining marks stripped, then
// recomposed. Queries and candidate columns go through the same fold so
// comparisons stay consistent.
func FoldText(s string) string {
	// The chain is stateful, so build it per call; folding only happens
	// at compile and insertion time, never per comparison.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
