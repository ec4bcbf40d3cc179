package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obakengshepherd/InsureClaim/config"
	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/infrastructure/messaging"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

type fakeQueue struct {
	types  []string
	bodies []any
	err    error
}

func (f *fakeQueue) PublishJSON(_ context.Context, eventType string, body any) error {
	f.types = append(f.types, eventType)
	f.bodies = append(f.bodies, body)
	return f.err
}

type fakeCounter struct{ got map[string]int }

func (f *fakeCounter) IncrEvent(eventType, result string) {
	if f.got == nil {
		f.got = map[string]int{}
	}
	f.got[eventType+"/"+result]++
}

func TestPublisher_Publish(t *testing.T) {
	q := &fakeQueue{}
	m := &fakeCounter{}
	p := messaging.NewPublisher(q, m)

	e := application.Event{Type: application.EventClaimSubmitted, Reference: "CLM-2025-000001"}
	require.NoError(t, p.Publish(context.Background(), e))
	assert.Equal(t, []string{"claim.submitted"}, q.types)
	assert.Equal(t, e, q.bodies[0])

	q.err = errors.New("channel closed")
	assert.Error(t, p.Publish(context.Background(), e))
	assert.Equal(t, map[string]int{"claim.submitted/ok": 1, "claim.submitted/error": 1}, m.got)
}

type ackRecorder struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func delivery(acks *ackRecorder, tag uint64, body []byte, redelivered bool) amqp.Delivery {
	return amqp.Delivery{Acknowledger: acks, DeliveryTag: tag, Body: body, Redelivered: redelivered}
}

func TestConsume_AckNackRules(t *testing.T) {
	acks := &ackRecorder{}
	good, _ := json.Marshal(application.Event{Type: "policy.created", Reference: "ok"})
	transient, _ := json.Marshal(application.Event{Type: "policy.created", Reference: "transient"})
	permanent, _ := json.Marshal(application.Event{Type: "policy.created", Reference: "permanent"})

	ch := make(chan amqp.Delivery, 5)
	ch <- delivery(acks, 1, good, false)
	ch <- delivery(acks, 2, []byte("{not json"), false)
	ch <- delivery(acks, 3, transient, false)
	ch <- delivery(acks, 4, transient, true)
	ch <- delivery(acks, 5, permanent, false)
	close(ch)

	handler := func(_ context.Context, e application.Event) error {
		switch e.Reference {
		case "transient":
			return errors.New("mailgun timeout")
		case "permanent":
			return messaging.ErrPermanent
		}
		return nil
	}
	messaging.Consume(context.Background(), ch, handler, helpers.NopLogger())

	assert.Equal(t, []uint64{1}, acks.acked)
	assert.Equal(t, []uint64{2, 3, 4, 5}, acks.nacked)
	assert.Equal(t, []bool{false, true, false, false}, acks.requeue)
}

func TestConsume_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		messaging.Consume(ctx, make(chan amqp.Delivery), func(context.Context, application.Event) error { return nil }, helpers.NopLogger())
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

type fakeSender struct{ to, subject, text, html string }

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.to, f.subject, f.text, f.html = to, subject, text, html
	return nil
}

func TestNotifier_Handle(t *testing.T) {
	s := &fakeSender{}
	n := &messaging.Notifier{Cfg: &config.Config{CompanyName: "Acme Mutual"}, Sender: s}

	err := n.Handle(context.Background(), application.Event{
		Type:       application.EventPaymentRecorded,
		OccurredAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Email:      "thandi@example.com",
		Name:       "Thandi",
		Reference:  "TXN-2025-000004",
		Data:       map[string]string{"amount": "380.00", "method": "DebitCard"},
	})
	require.NoError(t, err)
	assert.Equal(t, "thandi@example.com", s.to)
	assert.Equal(t, "Payment TXN-2025-000004 received", s.subject)
	assert.Contains(t, s.text, "Amount: 380.00")
	assert.Contains(t, s.html, "Acme Mutual")
}

func TestNotifier_MissingRecipientIsPermanent(t *testing.T) {
	n := &messaging.Notifier{Cfg: &config.Config{}, Sender: &fakeSender{}}
	err := n.Handle(context.Background(), application.Event{Type: application.EventPolicyCreated, Reference: "POL-2025-000001"})
	assert.ErrorIs(t, err, messaging.ErrPermanent)
}
