package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

var _ ports.Mailer = (*Dispatcher)(nil)

// ErrClosed is returned by Send once Close has been called.
var ErrClosed = errors.New("mail queue closed")

type message struct {
	to      string
	subject string
	body    string
}

// Dispatcher delivers emails asynchronously through a fixed set of workers.
// Messages are sharded by recipient, so mail to one address keeps its order.
type Dispatcher struct {
	workers []chan message
	sender  ports.Mailer
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in front
// of sender. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx bounds every delivery; workers
// return once Close has been called and their channel is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Close stops accepting mail. Messages already queued are still delivered;
// call Wait to block until they are.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Send queues an email for delivery. It blocks only while the recipient's
// worker channel is full, and gives up when ctx is done.
func (d *Dispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	idx := d.shardIndex(to)
	select {
	case d.workers[idx] <- message{to: to, subject: subject, body: htmlBody}:
		metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for msg := range ch {
		metrics.EmailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.deliver(ctx, id, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, msg message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, msg.to, msg.subject, msg.body)
	metrics.EmailDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("to", msg.to).
			Str("subject", msg.subject).
			Int("worker_id", id).
			Msg("email delivery failed")
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
	d.log.Debug().Str("to", msg.to).Str("subject", msg.subject).Msg("email delivered")
}
