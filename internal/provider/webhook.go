package provider

import (
	"encoding/json"
	"fmt"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

// SignatureHeaderNamer is implemented by every adapter so the webhook
// processor can tell a missing signature header apart from a bad signature.
type SignatureHeaderNamer interface {
	SignatureHeader() string
}

// UnmarshalWebhook decodes a raw webhook payload, wrapping decode failures so
// a malformed body surfaces as a typed provider error rather than a bare
// json error.
func UnmarshalWebhook(id domain.ProviderID, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return &APIError{
			Provider:  id,
			Operation: "webhook_parse",
			Message:   fmt.Sprintf("malformed webhook payload: %v", err),
		}
	}
	return nil
}
