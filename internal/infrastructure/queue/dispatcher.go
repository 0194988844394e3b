package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 10 * time.Second
)

var (
	ErrQueueFull = errors.New("mail queue is full")
	ErrStopped   = errors.New("mail dispatcher is stopped")
)

// MailDispatcher hands verification mails to a transport on background
// workers so request handlers never wait on mail delivery. Messages for the
// same user always land on the same worker, keeping their order.
type MailDispatcher struct {
	workers   []chan domain.VerificationMessage
	transport ports.Mailer
	log       zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, transport ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers:   make([]chan domain.VerificationMessage, numWorkers),
		transport: transport,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.VerificationMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Stop has drained
// their channel.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// SendVerification enqueues msg without blocking. It fails with ErrQueueFull
// when the worker's buffer is saturated.
func (d *MailDispatcher) SendVerification(_ context.Context, msg domain.VerificationMessage) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.workers[d.shardIndex(msg.UserID)] <- msg:
		metrics.MailsTotal.WithLabelValues("queued").Inc()
		metrics.MailQueueDepth.Inc()
		return nil
	default:
		metrics.MailsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("user_id", msg.UserID).Msg("mail queue full, dropping verification mail")
		return ErrQueueFull
	}
}

// Stop refuses new messages, lets workers drain what is queued and waits
// for them to exit.
func (d *MailDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *MailDispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.VerificationMessage) {
	defer d.wg.Done()
	for msg := range ch {
		metrics.MailQueueDepth.Dec()
		d.deliver(ctx, id, msg)
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, id int, msg domain.VerificationMessage) {
	// Detached so mails already queued still go out during shutdown.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.transport.SendVerification(sendCtx, msg)
	metrics.MailDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MailsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", msg.UserID).
			Int("worker_id", id).
			Msg("verification mail delivery failed")
		return
	}
	metrics.MailsTotal.WithLabelValues("sent").Inc()
}
