package aggregator

import (
	"context"
	"sync"

	"codeberg.org/mutker/wattd/internal/history"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/metrics"
)

// persister writes history snapshots on its own goroutine so the tick loop
// never waits on the store. Only the newest pending snapshot is kept; each
// one is a full copy, so the durable value always converges on the latest
// history.
type persister struct {
	repo *history.Repository
	rec  metrics.Recorder
	log  logger.Logger

	mu      sync.Mutex
	pending []float64
	queued  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newPersister(repo *history.Repository, rec metrics.Recorder, log logger.Logger) *persister {
	return &persister{
		repo: repo,
		rec:  rec,
		log:  log,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (p *persister) run(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-p.wake:
			p.flush(ctx)
		case <-p.quit:
			p.flush(ctx)
			return
		}
	}
}

// submit queues values for writing, replacing any snapshot not yet written
func (p *persister) submit(values []float64) {
	p.mu.Lock()
	if p.queued {
		p.log.Debug().Msg("Store busy, superseding pending history write")
	}
	p.pending, p.queued = values, true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// close writes whatever is still pending and waits for the worker to exit
func (p *persister) close() {
	close(p.quit)
	<-p.done
}

func (p *persister) flush(ctx context.Context) {
	p.mu.Lock()
	values, queued := p.pending, p.queued
	p.pending, p.queued = nil, false
	p.mu.Unlock()

	if !queued {
		return
	}
	if err := p.repo.SaveValues(ctx, values); err != nil {
		p.rec.PersistFailed("save_history")
		p.log.Error().Err(err).Int("history", len(values)).Msg("Failed to persist history")
	}
}
