package engine

import (
	"fmt"
	"math/rand/v2"
)

// SequenceLayout fixes the shape of a block: Length positions, two deviants
// both at or after WindowStart and at least MinGap apart.
type SequenceLayout struct {
	Length      int
	WindowStart int
	MinGap      int
}

var DefaultLayout = SequenceLayout{Length: 10, WindowStart: 4, MinGap: 2}

func (l SequenceLayout) candidates() [][2]int {
	var pairs [][2]int
	for i := l.WindowStart; i < l.Length; i++ {
		for j := i + l.MinGap; j < l.Length; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

func (l SequenceLayout) Validate() error {
	if l.Length <= 0 || l.WindowStart < 0 || l.MinGap < 1 {
		return fmt.Errorf("%w: sequence layout %+v", ErrInvalidConfig, l)
	}
	if len(l.candidates()) == 0 {
		return fmt.Errorf("%w: sequence layout %+v leaves no room for two deviants", ErrInvalidConfig, l)
	}
	return nil
}

type SequenceGenerator struct {
	layout SequenceLayout
	pairs  [][2]int
	rng    *rand.Rand
}

// NewSequenceGenerator enumerates the candidate deviant positions once. The
// layout must have passed Validate.
func NewSequenceGenerator(layout SequenceLayout, rng *rand.Rand) *SequenceGenerator {
	return &SequenceGenerator{layout: layout, pairs: layout.candidates(), rng: rng}
}

// Candidates returns the deviant position pairs Generate draws from.
func (g *SequenceGenerator) Candidates() [][2]int {
	out := make([][2]int, len(g.pairs))
	copy(out, g.pairs)
	return out
}

// Generate picks one candidate pair uniformly and marks both positions Deviant.
func (g *SequenceGenerator) Generate() Sequence {
	seq := make(Sequence, g.layout.Length)
	pair := g.pairs[g.rng.IntN(len(g.pairs))]
	seq[pair[0]] = Deviant
	seq[pair[1]] = Deviant
	return seq
}
