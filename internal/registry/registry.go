// Package registry constructs and holds the configured provider adapters.
package registry

import (
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider/affirm"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider/afterpay"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider/klarna"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider/sezzle"
)

// Registry is an immutable lookup of provider adapters, built once at startup.
// Only providers whose credentials are present are registered; a lookup for
// anything else answers nil rather than a half-configured adapter.
type Registry struct {
	providers map[domain.ProviderID]provider.Provider
	logger    *slog.Logger
}

// New builds one adapter per configured provider. A provider with missing
// credentials is skipped with a warning; one provider's absence never blocks
// the others.
func New(configs map[domain.ProviderID]domain.ProviderConfig, timeout time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := map[domain.ProviderID]provider.Provider{
		domain.ProviderKlarna:   klarna.New(configs[domain.ProviderKlarna], timeout),
		domain.ProviderAffirm:   affirm.New(configs[domain.ProviderAffirm], timeout),
		domain.ProviderAfterpay: afterpay.New(configs[domain.ProviderAfterpay], timeout),
		domain.ProviderSezzle:   sezzle.New(configs[domain.ProviderSezzle], timeout),
	}

	providers := make(map[domain.ProviderID]provider.Provider, len(candidates))
	for id, p := range candidates {
		if !p.IsConfigured() {
			logger.Warn("provider missing credentials, not registered", "provider", id)
			continue
		}
		providers[id] = p
		logger.Info("provider configured", "provider", id)
	}

	return &Registry{providers: providers, logger: logger}
}

// Get returns the adapter for the given provider, or nil when the provider is
// unknown or unconfigured.
func (r *Registry) Get(id domain.ProviderID) provider.Provider {
	return r.providers[id]
}

// IsAvailable reports whether the provider is registered.
func (r *Registry) IsAvailable(id domain.ProviderID) bool {
	_, ok := r.providers[id]
	return ok
}

// AvailableProviders lists the registered providers in the canonical order.
func (r *Registry) AvailableProviders() []domain.ProviderID {
	var available []domain.ProviderID
	for _, id := range domain.AllProviders() {
		if r.IsAvailable(id) {
			available = append(available, id)
		}
	}
	return available
}
