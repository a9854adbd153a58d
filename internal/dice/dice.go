package dice

import (
	"math/rand"
	"sync"
	"time"
)

// Roller provides seeded dice rolls. It is safe for concurrent use.
type Roller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new dice roller
func New(cfg *Config) *Roller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Roller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a value in [1, sides]. Fewer than one side rolls a d6.
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		sides = 6
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(sides) + 1
}

// Pick returns one of options chosen by a roll, or "" when there are none
func (r *Roller) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.Roll(len(options))-1]
}
