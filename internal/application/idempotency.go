package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

// RefundStore remembers completed refunds by client request id so a replayed
// request returns the recorded outcome instead of refunding twice.
type RefundStore interface {
	// Find returns the stored record for the request id, if any.
	Find(requestID string) (*RefundRecord, bool)
	// Save records the outcome of a completed refund.
	Save(requestID string, record RefundRecord)
}

// RefundRecord pairs the refund outcome with a hash of the request that
// produced it. A replay with the same id but different parameters is a client
// bug, not a retry.
type RefundRecord struct {
	RequestHash string
	Result      domain.RefundResult
}

// HashRefundRequest produces a stable digest of the business parameters of a
// refund. The request id itself is excluded; it is the lookup key.
func HashRefundRequest(providerID domain.ProviderID, req domain.RefundRequest) string {
	payload, _ := json.Marshal(struct {
		Provider        domain.ProviderID `json:"provider"`
		ProviderOrderID string            `json:"provider_order_id"`
		AmountMinor     int64             `json:"amount_minor"`
		Currency        string            `json:"currency"`
	}{providerID, req.ProviderOrderID, req.AmountMinor, req.Currency})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// InMemoryRefundStore is a mutex-guarded map. Process-local by design: the
// service keeps no durable state, and provider-side idempotency keys back this
// cache up across restarts.
type InMemoryRefundStore struct {
	mu      sync.RWMutex
	records map[string]RefundRecord
}

func NewInMemoryRefundStore() *InMemoryRefundStore {
	return &InMemoryRefundStore{records: make(map[string]RefundRecord)}
}

func (s *InMemoryRefundStore) Find(requestID string) (*RefundRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[requestID]
	if !ok {
		return nil, false
	}
	return &record, true
}

func (s *InMemoryRefundStore) Save(requestID string, record RefundRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[requestID] = record
}
