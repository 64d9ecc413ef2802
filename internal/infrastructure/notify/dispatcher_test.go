package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

type delivered struct {
	kind string
	to   string
	body string
}

type captureSender struct {
	mu   sync.Mutex
	msgs []delivered
	err  error
	seen chan struct{}
}

func newCaptureSender(capacity int) *captureSender {
	return &captureSender{seen: make(chan struct{}, capacity)}
}

func (c *captureSender) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	return c.record(delivered{kind: "email", to: to, body: htmlBody})
}

func (c *captureSender) SendSMS(_ context.Context, mobile, body string) error {
	return c.record(delivered{kind: "sms", to: mobile, body: body})
}

func (c *captureSender) record(d delivered) error {
	c.mu.Lock()
	c.msgs = append(c.msgs, d)
	c.mu.Unlock()
	c.seen <- struct{}{}
	return c.err
}

func (c *captureSender) all() []delivered {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]delivered, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func waitForDeliveries(t *testing.T, sender *captureSender, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-sender.seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_DeliversEmailAndSMS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newCaptureSender(4)
	d := NewDispatcher(2, sender, sender, zerolog.Nop())
	d.Start(ctx)

	d.EnqueueEmail("a@example.com", "Subject", "<p>hello</p>")
	d.EnqueueSMS("9876543210", "your code is 123456")

	waitForDeliveries(t, sender, 2)

	kinds := map[string]string{}
	for _, m := range sender.all() {
		kinds[m.kind] = m.to
	}
	if kinds["email"] != "a@example.com" || kinds["sms"] != "9876543210" {
		t.Fatalf("unexpected deliveries: %+v", sender.all())
	}
}

func TestDispatcher_SameDestinationKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const n = 10
	sender := newCaptureSender(n)
	d := NewDispatcher(4, sender, sender, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < n; i++ {
		d.EnqueueEmail("same@example.com", "Subject", string(rune('a'+i)))
	}
	waitForDeliveries(t, sender, n)

	// One destination maps to one shard, so bodies arrive in enqueue order.
	for i, m := range sender.all() {
		if m.body != string(rune('a'+i)) {
			t.Fatalf("out of order at %d: %q", i, m.body)
		}
	}
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newCaptureSender(2)
	sender.err = errors.New("smtp refused")
	d := NewDispatcher(1, sender, sender, zerolog.Nop())
	d.Start(ctx)

	d.EnqueueEmail("a@example.com", "Subject", "first")
	d.EnqueueEmail("a@example.com", "Subject", "second")

	// Both attempts reach the sender even though each one fails.
	waitForDeliveries(t, sender, 2)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// No workers started: buffers fill up and the overflow is dropped.
	d := NewDispatcher(1, newCaptureSender(1), newCaptureSender(1), zerolog.Nop())

	droppedBefore := testutil.ToFloat64(droppedTotal.WithLabelValues(string(kindEmail)))

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.EnqueueEmail("a@example.com", "Subject", "body")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full buffer")
	}

	dropped := testutil.ToFloat64(droppedTotal.WithLabelValues(string(kindEmail))) - droppedBefore
	if dropped != float64(channelBuffer) {
		t.Fatalf("expected %d dropped messages, got %v", channelBuffer, dropped)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, nil, nil, zerolog.Nop())
	first := d.shardIndex("voter@example.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("voter@example.com"); got != first {
			t.Fatalf("shard index changed: %d then %d", first, got)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index out of range: %d", first)
	}
}
