package matcher

import (
	"sort"
	"time"

	"doppel/internal/domain"
)

// Status reports the outcome of one ranking slice.
type Status struct {
	// Changed is true when the ranked ordering differs from what the
	// previous slice reported.
	Changed bool
	// Running is true while the pass has more candidates to score.
	Running bool
}

// Results is one ranked result snapshot, best match first.
type Results struct {
	Generation uint64
	Query      string
	Games      []domain.Game
	// Complete is true when the pass that produced this snapshot scored
	// every candidate.
	Complete bool
}

// scored records one matching candidate by its insertion position.
type scored struct {
	index int
	score int
}

// Scheduler performs one ranking pass over (snapshot, pattern) in
// bounded time slices: call Reset, then Tick repeatedly until Running is
// false. There is no incremental re-ranking across resets; a reset
// always starts from scratch.
type Scheduler struct {
	scorer  Scorer
	snap    *Snapshot
	pattern Pattern
	next    int // next snapshot position to score
	matched []scored
	fresh   bool // first slice after Reset reports a change unconditionally
}

// NewScheduler creates a scheduler with the given scorer, defaulting to
// the fzf-backed one.
func NewScheduler(scorer Scorer) *Scheduler {
	if scorer == nil {
		scorer = NewFzfScorer()
	}
	return &Scheduler{scorer: scorer, snap: &Snapshot{}}
}

// Reset discards all in-progress state and begins a new pass over the
// given snapshot and pattern. The first Tick after Reset always reports
// Changed, so a pass over an empty set (or a match-nothing pattern)
// still publishes its cleared result once.
func (s *Scheduler) Reset(snap *Snapshot, p Pattern) {
	s.snap = snap
	s.pattern = p
	s.next = 0
	s.matched = s.matched[:0]
	s.fresh = true
}

// checkEvery bounds how often the wall clock is consulted mid-slice.
const checkEvery = 64

// Tick advances the pass by at most budget of wall-clock time and
// reports whether the ranked ordering changed and whether more work
// remains.
func (s *Scheduler) Tick(budget time.Duration) Status {
	start := time.Now()
	changed := s.fresh
	s.fresh = false

	for s.next < s.snap.Len() {
		if s.scoreNext() {
			changed = true
		}
		s.next++
		if s.next%checkEvery == 0 && time.Since(start) >= budget {
			break
		}
	}

	if changed {
		// Stable sort keeps insertion order between equal scores.
		sort.SliceStable(s.matched, func(i, j int) bool {
			return s.matched[i].score > s.matched[j].score
		})
	}

	return Status{Changed: changed, Running: s.next < s.snap.Len()}
}

// Results returns the ranked ordering accumulated so far, tagged with
// the snapshot's generation.
func (s *Scheduler) Results() Results {
	games := make([]domain.Game, len(s.matched))
	for i, m := range s.matched {
		games[i] = s.snap.items[m.index].game
	}
	return Results{
		Generation: s.snap.Generation(),
		Query:      s.pattern.Raw(),
		Games:      games,
		Complete:   s.next >= s.snap.Len(),
	}
}

// scoreNext scores the candidate at s.next across its columns and
// records it when at least one column matches. An item's score is its
// best column score.
func (s *Scheduler) scoreNext() bool {
	if s.pattern.MatchNothing() {
		return false
	}

	it := &s.snap.items[s.next]

	if s.pattern.IsEmpty() {
		// No query: every item matches with a neutral score, which the
		// stable sort leaves in insertion order.
		s.matched = append(s.matched, scored{index: s.next})
		return true
	}

	best := 0
	found := false
	for j := range it.cols {
		if sc, ok := s.scoreColumn(&it.cols[j]); ok && (!found || sc > best) {
			best = sc
			found = true
		}
	}
	if !found {
		return false
	}

	s.matched = append(s.matched, scored{index: s.next, score: best})
	return true
}

// scoreColumn isolates scorer failures: a panic while scoring one column
// counts as a non-match for that column only, never aborting the pass.
func (s *Scheduler) scoreColumn(col *Column) (score int, ok bool) {
	defer func() {
		if recover() != nil {
			score, ok = 0, false
		}
	}()
	return s.scorer.Score(s.pattern, col)
}
