package cachesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("cache sync queue is closed")

// Queue runs syncs on a single background worker. Failures never reach the
// caller of Enqueue; they are logged and published on Errors.
type Queue struct {
	syncer  *Syncer
	timeout time.Duration
	jobs    chan identity.Identity
	errs    chan error
	done    chan struct{}

	closeMu sync.RWMutex
	closed  bool

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
}

// NewQueue starts a queue with room for size pending identities. Each job
// gets timeout to finish.
func NewQueue(syncer *Syncer, size int, timeout time.Duration) *Queue {
	q := &Queue{
		syncer:  syncer,
		timeout: timeout,
		jobs:    make(chan identity.Identity, size),
		errs:    make(chan error, size),
		done:    make(chan struct{}),
	}
	q.idle = sync.NewCond(&q.mu)

	go q.run()

	return q
}

// Enqueue hands ident to the worker. It blocks only while the queue is full.
func (q *Queue) Enqueue(ctx context.Context, ident identity.Identity) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.mu.Lock()
	q.pending++
	q.mu.Unlock()

	select {
	case q.jobs <- ident.Clone():
		return nil
	case <-ctx.Done():
		q.finish()

		return ctx.Err()
	}
}

// Errors publishes sync failures. Errors are dropped when nobody reads them
// and the buffer is full.
func (q *Queue) Errors() <-chan error {
	return q.errs
}

// Wait blocks until every enqueued identity has been processed.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pending > 0 {
		q.idle.Wait()
	}
}

// Close stops accepting work, drains the queue and stops the worker.
func (q *Queue) Close() {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()

		return
	}

	q.closed = true
	close(q.jobs)
	q.closeMu.Unlock()

	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for ident := range q.jobs {
		q.process(ident)
		q.finish()
	}
}

func (q *Queue) process(ident identity.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.syncer.Sync(ctx, ident); err != nil {
		log.Error().Err(err).Str("email", ident.Email).Msg("failed to sync directory identity to local store")

		select {
		case q.errs <- err:
		default:
		}

		return
	}

	log.Debug().Str("email", ident.Email).Msg("directory identity synced to local store")
}

func (q *Queue) finish() {
	q.mu.Lock()
	q.pending--

	if q.pending == 0 {
		q.idle.Broadcast()
	}
	q.mu.Unlock()
}
