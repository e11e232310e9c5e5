package queue

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes financial events to a fixed set of workers using
// consistent hashing on the fiche id, guaranteeing per-fiche event ordering
// in the audit log while keeping writes off the request path.
type Dispatcher struct {
	workers []chan domain.FinancialEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.FinancialEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.FinancialEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record sends the event to the worker responsible for its fiche. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Record(e domain.FinancialEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	d.workers[d.shardIndex(e.FicheID)] <- e
}

// shardIndex maps a fiche id deterministically to a worker index.
func (d *Dispatcher) shardIndex(ficheID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ficheID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.FinancialEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Append(ctx, &event); err != nil {
				d.log.Error().Err(err).
					Str("fiche_id", event.FicheID).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("financial event write failed")
			}
		}
	}
}
