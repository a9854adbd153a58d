package duel

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultWatchInterval is how often the watcher sweeps for overdue duels
const DefaultWatchInterval = 30 * time.Second

// WatcherConfig holds the dependencies of the duel watcher
type WatcherConfig struct {
	// Escalator opens the polls
	Escalator Escalator

	// Interval between sweeps; DefaultWatchInterval when zero
	Interval time.Duration
}

// Watcher periodically hands overdue duels to a room vote
type Watcher struct {
	escalator Escalator
	interval  time.Duration
}

// NewWatcher creates a new duel watcher
func NewWatcher(cfg *WatcherConfig) (*Watcher, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Escalator == nil {
		return nil, ErrNilEscalator
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	return &Watcher{
		escalator: cfg.Escalator,
		interval:  interval,
	}, nil
}

// Run sweeps on every tick until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Msg("duel watcher started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("duel watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	output, err := w.escalator.EscalateExpiredDuels(ctx, &EscalateExpiredDuelsInput{})
	if err != nil {
		log.Error().Err(err).Msg("duel sweep failed")
		return
	}

	if len(output.Polls) > 0 {
		log.Info().Int("polls", len(output.Polls)).Msg("escalated overdue duels")
	}
}
