package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasp-platform/user-service/internal/api/metrics"
	"github.com/wasp-platform/user-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher records audit events asynchronously through a fixed set of
// workers, sharded by subject user id so events for one user are persisted
// in the order they were recorded. Recording is best-effort: when a worker's
// queue is full the event is dropped and counted, never blocking the
// request that produced it.
type Dispatcher struct {
	workers []chan ports.AuditEvent
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
		workers: make([]chan ports.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for the worker responsible for its user id.
func (d *Dispatcher) Record(event ports.AuditEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().Str("action", event.Action).Str("user_id", event.UserID).Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			insertCtx, cancel := context.WithTimeout(context.Background(), insertTimeout)
			err := d.repo.Insert(insertCtx, event)
			cancel()
			if err != nil {
				metrics.AuditErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("action", event.Action).
					Str("user_id", event.UserID).
					Str("worker_id", strconv.Itoa(id)).
					Msg("audit event persistence failed")
			}
		}
	}
}
