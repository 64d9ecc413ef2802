package notify

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 15 * time.Second
)

type messageKind string

const (
	kindEmail messageKind = "email"
	kindSMS   messageKind = "sms"
)

type message struct {
	kind    messageKind
	to      string
	subject string
	body    string
}

// Dispatcher fans notification messages out to a fixed set of workers,
// sharded by destination so messages to the same recipient keep their order.
// Enqueue never blocks on the network; the transactional caller is done the
// moment the message is buffered. Implements ports.Notifier.
type Dispatcher struct {
	workers []chan message
	mailer  Mailer
	sms     SMSSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer Mailer, sms SMSSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		mailer:  mailer,
		sms:     sms,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// EnqueueEmail buffers an email for delivery. Best effort: if the shard
// buffer is full the message is dropped and logged, never blocking the caller.
func (d *Dispatcher) EnqueueEmail(to, subject, htmlBody string) {
	d.enqueue(message{kind: kindEmail, to: to, subject: subject, body: htmlBody})
}

// EnqueueSMS buffers a text message for delivery, same semantics as EnqueueEmail.
func (d *Dispatcher) EnqueueSMS(mobile, body string) {
	d.enqueue(message{kind: kindSMS, to: mobile, body: body})
}

func (d *Dispatcher) enqueue(m message) {
	idx := d.shardIndex(m.to)
	select {
	case d.workers[idx] <- m:
		queueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		droppedTotal.WithLabelValues(string(m.kind)).Inc()
		d.log.Warn().Str("kind", string(m.kind)).Str("to", m.to).Msg("notification queue full, message dropped")
	}
}

// shardIndex maps a destination deterministically to a worker index.
func (d *Dispatcher) shardIndex(destination string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(destination))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, m)
			queueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, m message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var err error
	switch m.kind {
	case kindSMS:
		err = d.sms.SendSMS(sendCtx, m.to, m.body)
	default:
		err = d.mailer.SendEmail(sendCtx, m.to, m.subject, m.body)
	}

	if err != nil {
		failedTotal.WithLabelValues(string(m.kind)).Inc()
		d.log.Error().Err(err).
			Str("kind", string(m.kind)).
			Str("to", m.to).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}

	sentTotal.WithLabelValues(string(m.kind)).Inc()
	d.log.Debug().Str("kind", string(m.kind)).Str("to", m.to).Msg("notification delivered")
}
