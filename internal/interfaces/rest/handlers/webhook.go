package handlers

import (
	"io"
	"net/http"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/interfaces/rest"
)

// Providers retry aggressively on anything but 2xx, so payload size is capped
// rather than trusted.
const maxWebhookBody = 1 << 20

// ReceiveWebhook ingests one provider notification. A discarded out-of-order
// event still answers 200: the delivery itself succeeded, the event is just
// stale.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	event, err := h.processor.Process(providerID(r), payload, r.Header)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	if event == nil {
		rest.WriteJSON(w, http.StatusOK, map[string]string{"result": "discarded"})
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"result": "accepted", "event_id": event.ID})
}
