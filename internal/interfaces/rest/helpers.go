// Package rest holds response envelopes shared by the HTTP handlers.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/application"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data})
}

// WriteError maps service errors to HTTP responses. Anything that is not a
// ServiceError is treated as internal and its detail kept out of the body.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		svcErr = application.NewInternalError(err)
	}
	if svcErr.HTTPStatus >= 500 && logger != nil {
		logger.Error("request failed", "code", svcErr.Code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		},
	})
}
