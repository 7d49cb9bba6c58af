package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GringoXY/4-gamers-mailing/internal/events"
	"github.com/GringoXY/4-gamers-mailing/internal/mailer"
	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

// fakeStore keeps inbox messages in memory and applies batch updates the way
// the real store does: only rows still pending are flipped.
type fakeStore struct {
	mu         sync.Mutex
	messages   []models.InboxMessage
	fetchCalls int
	persistErr error
}

func (s *fakeStore) FetchPending(_ context.Context) ([]models.InboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++

	var pending []models.InboxMessage
	for _, msg := range s.messages {
		if msg.IsPending() {
			pending = append(pending, msg)
		}
	}
	return pending, nil
}

func (s *fakeStore) MarkProcessedBatch(_ context.Context, msgs []models.InboxMessage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistErr != nil {
		return 0, s.persistErr
	}

	var updated int64
	for _, msg := range msgs {
		if !msg.IsProcessed() {
			continue
		}
		for i := range s.messages {
			if s.messages[i].ID == msg.ID && s.messages[i].IsPending() {
				s.messages[i].ProcessedAt = msg.ProcessedAt
				updated++
			}
		}
	}
	return updated, nil
}

func (s *fakeStore) get(id uuid.UUID) models.InboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if msg.ID == id {
			return msg
		}
	}
	return models.InboxMessage{}
}

// fakeSender records sent emails and can fail for a chosen recipient.
type fakeSender struct {
	mu      sync.Mutex
	emails  []mailer.Email
	failFor string
}

func (s *fakeSender) Send(_ context.Context, email mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && email.To == s.failFor {
		return errors.New("smtp: rejected recipient")
	}
	s.emails = append(s.emails, email)
	return nil
}

// emptyDocs is a document collaborator stub returning no document.
type emptyDocs struct{}

func (emptyDocs) Generate(_ context.Context, _ events.Event) (string, []byte, error) {
	return "", nil, nil
}

func newTestScheduler(t *testing.T, store *fakeStore, sender *fakeSender, interval time.Duration) (*Scheduler, *observer.ObservedLogs) {
	t.Helper()
	renderer, err := mailer.NewRenderer()
	require.NoError(t, err)
	builder := mailer.NewBuilder(renderer, emptyDocs{})

	core, logs := observer.New(zap.DebugLevel)
	return New(store, builder, sender, interval, zap.New(core)), logs
}

const validOrderCreatedPayload = `{
	"Id": "0b8c9f5e-3f1a-4f6a-9a0d-0a3a3f0f9f01",
	"CreatedAt": "2025-04-26T17:55:27Z",
	"ShipToEmail": "customer@example.com",
	"BillToName": "Jan Kowalski",
	"Products": [
		{
			"ProductCompanyName": "Logitech",
			"ProductModel": "G Pro X",
			"ProductPrice": "129.99",
			"ProductQuantity": 1
		}
	],
	"TotalPay": "129.99",
	"Remarks": ""
}`

const validStateUpdatedPayload = `{
	"Id": "0b8c9f5e-3f1a-4f6a-9a0d-0a3a3f0f9f01",
	"ShipToEmail": "other@example.com",
	"PreviousState": "Pending",
	"NewState": "Shipped",
	"UpdatedAt": "2025-04-27T08:00:00Z"
}`

func pendingMessage(eventType, payload string) models.InboxMessage {
	return models.NewInboxMessage(uuid.New(), models.EntityTypeOrder, eventType, payload)
}

func TestCycleProcessesPendingRecordWithoutAttachment(t *testing.T) {
	msg := pendingMessage(events.TypeOrderCreated, validOrderCreatedPayload)
	store := &fakeStore{messages: []models.InboxMessage{msg}}
	sender := &fakeSender{}

	sched, _ := newTestScheduler(t, store, sender, time.Minute)
	sched.runCycle(context.Background())

	stored := store.get(msg.ID)
	require.NotNil(t, stored.ProcessedAt)

	require.Len(t, sender.emails, 1)
	assert.Equal(t, "customer@example.com", sender.emails[0].To)
	// Empty document from the collaborator means no attachment was sent
	assert.Nil(t, sender.emails[0].Attachment)
}

func TestCycleBatchIsolation(t *testing.T) {
	good1 := pendingMessage(events.TypeOrderCreated, validOrderCreatedPayload)
	bad := pendingMessage("UnknownType", `{}`)
	good2 := pendingMessage(events.TypeOrderStateUpdated, validStateUpdatedPayload)

	store := &fakeStore{messages: []models.InboxMessage{good1, bad, good2}}
	sender := &fakeSender{}

	sched, logs := newTestScheduler(t, store, sender, time.Minute)
	sched.runCycle(context.Background())

	assert.NotNil(t, store.get(good1.ID).ProcessedAt)
	assert.NotNil(t, store.get(good2.ID).ProcessedAt)
	assert.Nil(t, store.get(bad.ID).ProcessedAt)
	assert.Len(t, sender.emails, 2)

	// The failure names the unknown type
	found := false
	for _, entry := range logs.All() {
		if entry.Level == zap.ErrorLevel {
			for _, field := range entry.Context {
				if field.Key == "error" && field.Interface != nil {
					if err, ok := field.Interface.(error); ok && errors.Is(err, events.ErrUnsupportedEventType) {
						found = true
					}
				}
			}
		}
	}
	assert.True(t, found, "expected an error log for the unsupported event type")
}

func TestCycleDeliveryFailureLeavesRecordPending(t *testing.T) {
	msg := pendingMessage(events.TypeOrderCreated, validOrderCreatedPayload)
	store := &fakeStore{messages: []models.InboxMessage{msg}}
	sender := &fakeSender{failFor: "customer@example.com"}

	sched, _ := newTestScheduler(t, store, sender, time.Minute)
	sched.runCycle(context.Background())

	assert.Nil(t, store.get(msg.ID).ProcessedAt)
	assert.Empty(t, sender.emails)
}

func TestCyclePersistFailureKeepsRecordsPending(t *testing.T) {
	msg := pendingMessage(events.TypeOrderCreated, validOrderCreatedPayload)
	store := &fakeStore{
		messages:   []models.InboxMessage{msg},
		persistErr: errors.New("store unreachable"),
	}
	sender := &fakeSender{}

	sched, _ := newTestScheduler(t, store, sender, time.Minute)
	sched.runCycle(context.Background())

	// The email went out but the batch update failed: the record reverts to
	// pending and the next cycle re-selects and re-sends it.
	require.Len(t, sender.emails, 1)
	assert.Nil(t, store.get(msg.ID).ProcessedAt)

	store.mu.Lock()
	store.persistErr = nil
	store.mu.Unlock()

	sched.runCycle(context.Background())

	assert.Equal(t, 2, store.fetchCalls)
	assert.Len(t, sender.emails, 2)
	assert.NotNil(t, store.get(msg.ID).ProcessedAt)
}

func TestRunExitsOnCancelDuringWait(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}

	sched, _ := newTestScheduler(t, store, sender, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("scheduler did not stop after cancellation")
	}

	// Cancellation during the wait must not start a new cycle
	assert.Equal(t, 0, store.fetchCalls)
}

func TestProcessedRecordNotSelectedAgain(t *testing.T) {
	msg := pendingMessage(events.TypeOrderCreated, validOrderCreatedPayload)
	store := &fakeStore{messages: []models.InboxMessage{msg}}
	sender := &fakeSender{}

	sched, _ := newTestScheduler(t, store, sender, time.Minute)
	sched.runCycle(context.Background())
	first := store.get(msg.ID).ProcessedAt
	require.NotNil(t, first)

	sched.runCycle(context.Background())

	// Terminal state is idempotent: no second send, timestamp untouched
	assert.Len(t, sender.emails, 1)
	assert.Equal(t, first, store.get(msg.ID).ProcessedAt)
}
