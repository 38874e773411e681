package leadimport

import (
	"math/rand"
	"time"
)

// RandFactory produces the random source used for handler assignment. The
// batch controller calls it once per import so each invocation is seeded
// independently; tests inject a fixed seed to make assignment deterministic.
type RandFactory func() *rand.Rand

func defaultRandFactory() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// pickHandler chooses one handler uniformly at random. The same handler may
// win many rows in a batch; there is no balancing.
func pickHandler(rng *rand.Rand, handlerIDs []int64) int64 {
	return handlerIDs[rng.Intn(len(handlerIDs))]
}
