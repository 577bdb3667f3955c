package webhook_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/registry"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const klarnaSecret = "whsec_klarna"

func newRegistry() *registry.Registry {
	return registry.New(map[domain.ProviderID]domain.ProviderConfig{
		domain.ProviderKlarna: {APIKey: "k", APISecret: "s", WebhookSecret: klarnaSecret},
	}, time.Second, nil)
}

// chanUpdater forwards applied events to a channel so tests can observe the
// asynchronous dispatch.
type chanUpdater struct {
	events chan domain.WebhookEvent
}

func newChanUpdater() *chanUpdater {
	return &chanUpdater{events: make(chan domain.WebhookEvent, 16)}
}

func (u *chanUpdater) ApplyEvent(_ context.Context, event domain.WebhookEvent) error {
	u.events <- event
	return nil
}

func (u *chanUpdater) waitForEvent(t *testing.T) domain.WebhookEvent {
	t.Helper()
	select {
	case event := <-u.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched event")
		return domain.WebhookEvent{}
	}
}

// panicUpdater always panics; used to prove consumer isolation.
type panicUpdater struct{}

func (panicUpdater) ApplyEvent(context.Context, domain.WebhookEvent) error {
	panic("consumer bug")
}

func klarnaPayload(orderID string, status string) []byte {
	return fmt.Appendf(nil,
		`{"event_type":"order.%s","order_id":%q,"merchant_reference1":"order-1","status":%q,"amount":5000,"currency":"USD"}`,
		status, orderID, status)
}

func signedHeaders(payload []byte) http.Header {
	headers := http.Header{}
	headers.Set("Klarna-Signature", provider.SignHex(klarnaSecret, payload))
	return headers
}

func TestProcessor_AcceptsAndDispatchesValidEvents(t *testing.T) {
	updater := newChanUpdater()
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil, updater)

	payload := klarnaPayload("ord-1", "authorized")
	event, err := processor.Process(domain.ProviderKlarna, payload, signedHeaders(payload))

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.StatusAuthorized, event.Status)

	dispatched := updater.waitForEvent(t)
	assert.Equal(t, event.ID, dispatched.ID)
}

func TestProcessor_RejectsUnknownProvider(t *testing.T) {
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil)

	_, err := processor.Process("paypal", []byte(`{}`), http.Header{})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeUnknownProvider, svcErr.Code)
}

func TestProcessor_RejectsBadSignature(t *testing.T) {
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil)

	payload := klarnaPayload("ord-1", "authorized")
	headers := http.Header{}
	headers.Set("Klarna-Signature", provider.SignHex("wrong-secret", payload))

	_, err := processor.Process(domain.ProviderKlarna, payload, headers)

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeSignature, svcErr.Code)
	assert.Equal(t, http.StatusUnauthorized, svcErr.HTTPStatus)
}

func TestProcessor_MissingSignatureHeaderPolicy(t *testing.T) {
	payload := klarnaPayload("ord-1", "authorized")

	t.Run("production rejects", func(t *testing.T) {
		processor := webhook.NewProcessor(newRegistry(), nil, "production", nil)

		_, err := processor.Process(domain.ProviderKlarna, payload, http.Header{})

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeSignature, svcErr.Code)
	})

	t.Run("sandbox accepts with a warning", func(t *testing.T) {
		processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil)

		event, err := processor.Process(domain.ProviderKlarna, payload, http.Header{})

		require.NoError(t, err)
		require.NotNil(t, event)
	})
}

func TestProcessor_DiscardsOutOfOrderEvents(t *testing.T) {
	updater := newChanUpdater()
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil, updater)

	apply := func(status string) (*domain.WebhookEvent, error) {
		payload := klarnaPayload("ord-1", status)
		return processor.Process(domain.ProviderKlarna, payload, signedHeaders(payload))
	}

	event, err := apply("captured")
	require.NoError(t, err)
	require.NotNil(t, event)
	updater.waitForEvent(t)

	t.Run("stale authorized after captured is discarded", func(t *testing.T) {
		event, err := apply("authorized")

		require.NoError(t, err, "discard still acknowledges the sender")
		assert.Nil(t, event)

		select {
		case e := <-updater.events:
			t.Fatalf("discarded event must not be dispatched, got %s", e.Status)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("forward progress is still applied", func(t *testing.T) {
		event, err := apply("refunded")

		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, domain.StatusRefunded, event.Status)
		updater.waitForEvent(t)
	})
}

func TestProcessor_TerminalStatesAcceptNoFurtherEvents(t *testing.T) {
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil)

	apply := func(orderID, status string) (*domain.WebhookEvent, error) {
		payload := klarnaPayload(orderID, status)
		return processor.Process(domain.ProviderKlarna, payload, signedHeaders(payload))
	}

	event, err := apply("ord-2", "cancelled")
	require.NoError(t, err)
	require.NotNil(t, event)

	event, err = apply("ord-2", "captured")
	require.NoError(t, err)
	assert.Nil(t, event, "events after a terminal state are discarded")
}

func TestProcessor_IsolatesFailingConsumers(t *testing.T) {
	healthy := newChanUpdater()
	processor := webhook.NewProcessor(newRegistry(), nil, "sandbox", nil, panicUpdater{}, healthy)

	payload := klarnaPayload("ord-3", "authorized")
	event, err := processor.Process(domain.ProviderKlarna, payload, signedHeaders(payload))

	require.NoError(t, err)
	require.NotNil(t, event)

	dispatched := healthy.waitForEvent(t)
	assert.Equal(t, event.ID, dispatched.ID)
}

func TestInMemoryStateStore_FirstEventSetsBaseline(t *testing.T) {
	store := webhook.NewInMemoryStateStore()

	previous, applied := store.Apply(domain.ProviderKlarna, "ord-1", domain.StatusCaptured)
	require.True(t, applied)
	assert.Empty(t, previous)

	current, ok := store.Current(domain.ProviderKlarna, "ord-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusCaptured, current)

	_, applied = store.Apply(domain.ProviderKlarna, "ord-1", domain.StatusPending)
	assert.False(t, applied)
}
