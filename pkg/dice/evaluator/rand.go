package evaluator

import "math/rand"

// Source supplies die rolls. Roll returns a uniform value in [1, sides].
// A Source is owned by one evaluation at a time; implementations need not be
// safe for concurrent use.
type Source interface {
	Roll(sides int64) int64
}

// randSource is a Source backed by math/rand.
type randSource struct {
	rng *rand.Rand
}

// NewSource returns a seeded Source. The same seed always produces the same
// sequence of rolls.
func NewSource(seed int64) Source {
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Roll(sides int64) int64 {
	return s.rng.Int63n(sides) + 1
}
