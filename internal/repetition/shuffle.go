package repetition

import (
	"math/rand/v2"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Study order is shuffled with a constant seed: the same units in the same stored order
// always come back in the same sequence.
const (
	shuffleSeed1 uint64 = 0x6b6e6f6c
	shuffleSeed2 uint64 = 0x6465636b
)

// Shuffle permutes units in place in the reproducible study order.
func Shuffle(units []domain.RepetitionUnit) {
	r := rand.New(rand.NewPCG(shuffleSeed1, shuffleSeed2))
	r.Shuffle(len(units), func(i, j int) {
		units[i], units[j] = units[j], units[i]
	})
}
