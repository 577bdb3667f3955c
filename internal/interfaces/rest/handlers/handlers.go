// Package handlers exposes the gateway's HTTP surface: the merchant-facing
// payment API and the provider-facing webhook endpoints.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/webhook"
)

type Handler struct {
	service   *application.BNPLService
	processor *webhook.Processor
	logger    *slog.Logger
}

func NewHandler(service *application.BNPLService, processor *webhook.Processor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		processor: processor,
		logger:    logger,
	}
}

// Routes registers every endpoint on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/providers", h.ListProviders)
	mux.HandleFunc("POST /api/v1/eligibility", h.CheckEligibilityAll)
	mux.HandleFunc("POST /api/v1/providers/{provider}/eligibility", h.CheckEligibility)
	mux.HandleFunc("POST /api/v1/providers/{provider}/sessions", h.CreateSession)
	mux.HandleFunc("POST /api/v1/providers/{provider}/authorize", h.AuthorizePayment)
	mux.HandleFunc("POST /api/v1/providers/{provider}/capture", h.CapturePayment)
	mux.HandleFunc("POST /api/v1/providers/{provider}/refund", h.ProcessRefund)
	mux.HandleFunc("POST /api/v1/providers/{provider}/orders/{id}/cancel", h.CancelOrder)
	mux.HandleFunc("GET /api/v1/providers/{provider}/orders/{id}", h.GetOrderStatus)

	mux.HandleFunc("POST /webhooks/bnpl/{provider}", h.ReceiveWebhook)
}
