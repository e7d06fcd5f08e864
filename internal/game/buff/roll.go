package buff

import (
	"math/rand/v2"
	"sync"
)

// Roller is a source of uniform values in [0, 1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// GlobalRoller draws from the process-wide math/rand source.
type GlobalRoller struct{}

func (GlobalRoller) Float64() float64 {
	return rand.Float64()
}

// SyncRoller serialises a Roller that is not safe for concurrent use,
// e.g. a seeded *rand.Rand shared by enemies stepped in parallel.
type SyncRoller struct {
	mu sync.Mutex
	r  Roller
}

func NewSyncRoller(r Roller) *SyncRoller {
	return &SyncRoller{r: r}
}

func (s *SyncRoller) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Roll reports whether an effect with the given probability procs.
// Probability 1 always procs, 0 procs only on an exact zero roll.
func Roll(r Roller, probability float64) bool {
	return r.Float64() <= probability
}
