package matcher

import (
	"strings"

	"github.com/junegunn/fzf/src/util"

	"doppel/internal/domain"
)

// Column is one pre-folded searchable projection of an item. Both case
// variants are derived once at insertion so the scorer never normalizes
// text per comparison.
type Column struct {
	Text  util.Chars // accent/width-folded, original case
	Lower util.Chars // accent/width-folded, lowercased
}

// item pairs a game with its derived searchable columns.
type item struct {
	game domain.Game
	cols []Column
}

// Snapshot is a read-only, generation-tagged view of the candidate set.
// It stays valid while the store is replaced underneath it.
type Snapshot struct {
	generation uint64
	items      []item
}

// Generation returns the candidate-set version this snapshot was taken at.
func (sn *Snapshot) Generation() uint64 { return sn.generation }

// Len returns the number of candidates.
func (sn *Snapshot) Len() int { return len(sn.items) }

// Game returns the candidate at insertion position i.
func (sn *Snapshot) Game(i int) domain.Game { return sn.items[i].game }

// Store owns the current candidate set and its searchable columns. It is
// not safe for concurrent use; the engine worker is its only writer and
// reader.
type Store struct {
	snap *Snapshot
}

// NewStore creates an empty store at generation zero.
func NewStore() *Store {
	return &Store{snap: &Snapshot{}}
}

// Replace swaps the candidate set wholesale and bumps the generation.
// Items visible through an outstanding snapshot are never mutated; the
// new set gets a fresh backing slice.
func (s *Store) Replace(games []domain.Game) *Snapshot {
	items := make([]item, len(games))
	for i, g := range games {
		cols := g.SearchColumns()
		derived := make([]Column, len(cols))
		for j, text := range cols {
			folded := FoldText(text)
			derived[j] = Column{
				Text:  util.ToChars([]byte(folded)),
				Lower: util.ToChars([]byte(strings.ToLower(folded))),
			}
		}
		items[i] = item{game: g, cols: derived}
	}
	s.snap = &Snapshot{generation: s.snap.generation + 1, items: items}
	return s.snap
}

// Snapshot returns the current generation's view.
func (s *Store) Snapshot() *Snapshot { return s.snap }
