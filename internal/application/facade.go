// Package application orchestrates provider adapters behind a single service
// surface: provider resolution, input validation, refund idempotency and the
// error taxonomy handlers render from.
package application

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/registry"
)

// BNPLService is the single entry point the transport layer talks to. It owns
// no provider-specific knowledge; everything provider-shaped lives behind the
// registry.
type BNPLService struct {
	registry *registry.Registry
	refunds  RefundStore
	retryCfg RetryConfig
	logger   *slog.Logger
}

func NewBNPLService(reg *registry.Registry, refunds RefundStore, retryCfg RetryConfig, logger *slog.Logger) *BNPLService {
	if logger == nil {
		logger = slog.Default()
	}
	if refunds == nil {
		refunds = NewInMemoryRefundStore()
	}
	return &BNPLService{
		registry: reg,
		refunds:  refunds,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// resolve maps a provider id onto a usable adapter or a ServiceError. A known
// provider without credentials and an id we have never heard of fail
// differently so the caller can tell a typo from a deployment gap.
func (s *BNPLService) resolve(id domain.ProviderID) (provider.Provider, error) {
	if p := s.registry.Get(id); p != nil {
		return p, nil
	}
	for _, known := range domain.AllProviders() {
		if id == known {
			return nil, NewProviderNotConfiguredError(string(id))
		}
	}
	return nil, NewUnknownProviderError(string(id))
}

// translate folds provider-layer errors into the service taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := IsServiceError(err); ok {
		return err
	}
	if _, ok := provider.IsSignatureError(err); ok {
		return NewSignatureError(err)
	}
	if _, ok := provider.IsNetworkError(err); ok {
		return NewNetworkError(err)
	}
	if _, ok := provider.IsAPIError(err); ok {
		return NewProviderAPIError(err)
	}
	if _, ok := domain.IsDomainError(err); ok {
		return NewInvalidInputError(err)
	}
	return NewInternalError(err)
}

// AvailableProviders lists providers with usable credentials.
func (s *BNPLService) AvailableProviders() []domain.ProviderID {
	return s.registry.AvailableProviders()
}

// CheckEligibility answers for one provider. No network call is made.
func (s *BNPLService) CheckEligibility(providerID domain.ProviderID, req domain.EligibilityRequest) (*domain.EligibilityResponse, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}
	resp := p.CheckEligibility(req)
	return &resp, nil
}

// CheckEligibilityAll fans the question out to every configured provider and
// returns the answers sorted eligible-first, then by provider id. The fan-out
// is concurrent out of habit rather than need; adapters answer from static
// limits today.
func (s *BNPLService) CheckEligibilityAll(ctx context.Context, req domain.EligibilityRequest) ([]domain.EligibilityResponse, error) {
	available := s.registry.AvailableProviders()
	results := make([]domain.EligibilityResponse, len(available))

	g, _ := errgroup.WithContext(ctx)
	for i, id := range available {
		p := s.registry.Get(id)
		g.Go(func() error {
			results[i] = p.CheckEligibility(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, NewInternalError(err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Eligible != results[j].Eligible {
			return results[i].Eligible
		}
		return results[i].Provider < results[j].Provider
	})
	return results, nil
}

// CreateSession validates the request and opens a checkout session with the
// chosen provider.
func (s *BNPLService) CreateSession(ctx context.Context, providerID domain.ProviderID, req domain.SessionRequest) (*domain.Session, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSessionRequest(req); err != nil {
		return nil, NewInvalidInputError(err)
	}

	session, err := p.CreateSession(ctx, req)
	if err != nil {
		s.logger.Error("create session failed", "provider", providerID, "order_id", req.OrderID, "error", err)
		return nil, translate(err)
	}

	s.logger.Info("checkout session created",
		"provider", providerID, "order_id", req.OrderID, "session_id", session.SessionID)
	return session, nil
}

// AuthorizePayment confirms the customer-approved session. A decline comes
// back as a normal result, not an error.
func (s *BNPLService) AuthorizePayment(ctx context.Context, providerID domain.ProviderID, sessionID, token string) (*domain.AuthorizationResult, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}

	result, err := p.AuthorizePayment(ctx, sessionID, token)
	if err != nil {
		s.logger.Error("authorize failed", "provider", providerID, "session_id", sessionID, "error", err)
		return nil, translate(err)
	}

	s.logger.Info("authorization completed",
		"provider", providerID, "session_id", sessionID, "authorized", result.Authorized)
	return result, nil
}

// CapturePayment settles previously authorized funds.
func (s *BNPLService) CapturePayment(ctx context.Context, providerID domain.ProviderID, authToken string, amountMinor int64) (*domain.CaptureResult, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}

	result, err := p.CapturePayment(ctx, authToken, amountMinor)
	if err != nil {
		s.logger.Error("capture failed", "provider", providerID, "error", err)
		return nil, translate(err)
	}

	s.logger.Info("capture completed",
		"provider", providerID, "captured", result.Captured, "amount_minor", result.AmountMinor)
	return result, nil
}

// ProcessRefund issues a refund exactly once per request id. A replay with
// matching parameters returns the recorded result; a replay with different
// parameters is rejected. Transient provider failures are retried because the
// provider-side idempotency key makes the retry safe.
func (s *BNPLService) ProcessRefund(ctx context.Context, providerID domain.ProviderID, req domain.RefundRequest) (*domain.RefundResult, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateRefundRequest(req); err != nil {
		return nil, NewInvalidInputError(err)
	}

	requestHash := HashRefundRequest(providerID, req)
	if record, ok := s.refunds.Find(req.RequestID); ok {
		if record.RequestHash != requestHash {
			return nil, NewIdempotencyMismatchError()
		}
		s.logger.Info("refund replayed from store",
			"provider", providerID, "request_id", req.RequestID, "refund_id", record.Result.RefundID)
		result := record.Result
		return &result, nil
	}

	result, err := retry(ctx, s.retryCfg, func(ctx context.Context) (*domain.RefundResult, error) {
		return p.ProcessRefund(ctx, req)
	})
	if err != nil {
		s.logger.Error("refund failed", "provider", providerID, "request_id", req.RequestID, "error", err)
		return nil, translate(err)
	}

	if result.Refunded {
		s.refunds.Save(req.RequestID, RefundRecord{RequestHash: requestHash, Result: *result})
	}

	s.logger.Info("refund completed",
		"provider", providerID, "request_id", req.RequestID,
		"refunded", result.Refunded, "refund_id", result.RefundID)
	return result, nil
}

// CancelOrder voids an order before capture.
func (s *BNPLService) CancelOrder(ctx context.Context, providerID domain.ProviderID, orderID string) (*domain.CancelResult, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}

	result, err := p.CancelOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("cancel failed", "provider", providerID, "order_id", orderID, "error", err)
		return nil, translate(err)
	}

	s.logger.Info("cancel completed", "provider", providerID, "order_id", orderID, "success", result.Success)
	return result, nil
}

// GetOrderStatus reads the provider's current view of an order.
func (s *BNPLService) GetOrderStatus(ctx context.Context, providerID domain.ProviderID, orderID string) (*domain.OrderStatus, error) {
	p, err := s.resolve(providerID)
	if err != nil {
		return nil, err
	}

	status, err := p.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, translate(err)
	}
	return status, nil
}
