package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/interfaces/rest"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]any{
		"providers": h.service.AvailableProviders(),
	})
}

func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req domain.EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	resp, err := h.service.CheckEligibility(providerID(r), req)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CheckEligibilityAll(w http.ResponseWriter, r *http.Request) {
	var req domain.EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	results, err := h.service.CheckEligibilityAll(r.Context(), req)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	session, err := h.service.CreateSession(r.Context(), providerID(r), req)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, session)
}

type authorizeRequest struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

func (h *Handler) AuthorizePayment(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	result, err := h.service.AuthorizePayment(r.Context(), providerID(r), req.SessionID, req.Token)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

type captureRequest struct {
	AuthToken   string `json:"auth_token"`
	AmountMinor int64  `json:"amount_minor"`
}

func (h *Handler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	result, err := h.service.CapturePayment(r.Context(), providerID(r), req.AuthToken, req.AmountMinor)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	result, err := h.service.ProcessRefund(r.Context(), providerID(r), req)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CancelOrder(r.Context(), providerID(r), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetOrderStatus(r.Context(), providerID(r), r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteJSON(w, http.StatusOK, status)
}

func providerID(r *http.Request) domain.ProviderID {
	return domain.ProviderID(r.PathValue("provider"))
}
