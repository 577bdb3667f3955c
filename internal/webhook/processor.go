// Package webhook ingests provider notifications: signature checks, payload
// normalization, ordering guards and fan-out to interested consumers.
package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/metrics"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/registry"
)

// OrderUpdater consumes accepted webhook events. Implementations are expected
// to be fast; slow consumers delay other events for the same processor.
type OrderUpdater interface {
	ApplyEvent(ctx context.Context, event domain.WebhookEvent) error
}

// Processor turns raw provider notifications into canonical events and guards
// the per-order state machine. Events that fail signature verification are
// rejected before any business field is read; events that would move an order
// backwards are acknowledged but discarded.
type Processor struct {
	registry    *registry.Registry
	states      StateStore
	updaters    []OrderUpdater
	environment string
	dispatchTTL time.Duration
	logger      *slog.Logger
}

func NewProcessor(reg *registry.Registry, states StateStore, environment string, logger *slog.Logger, updaters ...OrderUpdater) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if states == nil {
		states = NewInMemoryStateStore()
	}
	return &Processor{
		registry:    reg,
		states:      states,
		updaters:    updaters,
		environment: environment,
		dispatchTTL: 30 * time.Second,
		logger:      logger,
	}
}

func (p *Processor) requireSignature() bool {
	return p.environment == "production"
}

// Process verifies, normalizes and applies one inbound notification. A nil
// error means the sender may be answered with 200; the returned event is nil
// when the notification was acknowledged but discarded by the ordering guard.
func (p *Processor) Process(providerID domain.ProviderID, payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	adapter := p.registry.Get(providerID)
	if adapter == nil {
		return nil, application.NewUnknownProviderError(string(providerID))
	}

	if namer, ok := adapter.(provider.SignatureHeaderNamer); ok {
		if headers.Get(namer.SignatureHeader()) == "" {
			if p.requireSignature() {
				metrics.WebhooksReceived.WithLabelValues(string(providerID), "signature_rejected").Inc()
				return nil, application.NewSignatureError(
					&provider.SignatureError{Provider: providerID, Header: namer.SignatureHeader()})
			}
			p.logger.Warn("webhook arrived without a signature header, accepting in non-production",
				"provider", providerID, "header", namer.SignatureHeader())
		}
	}

	event, err := adapter.HandleWebhook(payload, headers)
	if err != nil {
		if _, ok := provider.IsSignatureError(err); ok {
			metrics.WebhooksReceived.WithLabelValues(string(providerID), "signature_rejected").Inc()
			p.logger.Warn("webhook signature rejected", "provider", providerID)
			return nil, application.NewSignatureError(err)
		}
		metrics.WebhooksReceived.WithLabelValues(string(providerID), "parse_error").Inc()
		p.logger.Error("webhook payload rejected", "provider", providerID, "error", err)
		return nil, application.NewInvalidInputError(err)
	}

	// Statuses outside the canonical vocabulary carry no ordering semantics;
	// they are forwarded as-is for consumers to log or ignore.
	if event.Status.IsCanonical() {
		previous, applied := p.states.Apply(event.Provider, event.ProviderOrderID, event.Status)
		if !applied {
			metrics.WebhooksReceived.WithLabelValues(string(providerID), "discarded").Inc()
			p.logger.Warn("out-of-order webhook discarded",
				"provider", providerID, "provider_order_id", event.ProviderOrderID,
				"current", previous, "received", event.Status)
			return nil, nil
		}
	}

	metrics.WebhooksReceived.WithLabelValues(string(providerID), "accepted").Inc()
	p.logger.Info("webhook accepted",
		"provider", providerID, "event_type", event.EventType,
		"provider_order_id", event.ProviderOrderID, "status", event.Status)

	p.dispatch(*event)
	return event, nil
}

// dispatch hands the event to every updater off the request path. One failing
// or panicking consumer never blocks the provider's delivery acknowledgement
// or the other consumers.
func (p *Processor) dispatch(event domain.WebhookEvent) {
	for _, updater := range p.updaters {
		go func(u OrderUpdater) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("webhook consumer panicked",
						"provider", event.Provider, "event_id", event.ID, "panic", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), p.dispatchTTL)
			defer cancel()

			if err := u.ApplyEvent(ctx, event); err != nil {
				p.logger.Error("webhook consumer failed",
					"provider", event.Provider, "event_id", event.ID, "error", err)
			}
		}(updater)
	}
}
