// Package webhook exposes the inbound gateway notification endpoint.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/services/webhook"
)

const maxBodyBytes = 1 << 20

// Service applies a validated notification.
type Service interface {
	ApplyNotification(ctx context.Context, n domain.WebhookNotification) (*webhook.Result, error)
}

// Handler serves POST /api/webhook/payment-status. When a signing
// secret is configured, requests must carry a valid HMAC-SHA256 of the
// body in X-Webhook-Signature.
type Handler struct {
	service Service
	secret  string
	logger  *zap.Logger
}

func NewHandler(service Service, secret string, logger *zap.Logger) *Handler {
	return &Handler{service: service, secret: secret, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/webhook/payment-status", h.PaymentStatus)
	r.Get("/api/webhook/health", h.Health)
}

// Health lets gateways probe the endpoint before registering it.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// notification is the wire shape. Status arrives as a string and is
// parsed before the domain sees it.
type notification struct {
	TransactionID        string          `json:"transaction_id"`
	Status               string          `json:"status"`
	Amount               decimal.Decimal `json:"amount"`
	GatewayTransactionID string          `json:"gateway_transaction_id"`
	GatewayResponse      string          `json:"gateway_response,omitempty"`
	EventType            string          `json:"event_type,omitempty"`
	EventDate            time.Time       `json:"event_date"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if h.secret != "" && !h.validSignature(body, r.Header.Get("X-Webhook-Signature")) {
		h.logger.Warn("webhook signature rejected",
			zap.String("remote_addr", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid webhook signature"})
		return
	}

	var wire notification
	if err := json.Unmarshal(body, &wire); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	status, err := domain.ParsePaymentStatus(wire.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid payment status"})
		return
	}

	result, err := h.service.ApplyNotification(r.Context(), domain.WebhookNotification{
		TransactionID:        wire.TransactionID,
		Status:               status,
		Amount:               wire.Amount,
		GatewayTransactionID: wire.GatewayTransactionID,
		GatewayResponse:      wire.GatewayResponse,
		EventType:            wire.EventType,
		EventDate:            wire.EventDate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) validSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		h.logger.Error("unhandled webhook error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case domain.ErrorCodePaymentNotFound:
		status = http.StatusNotFound
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeInvalidTransition:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: domainErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
