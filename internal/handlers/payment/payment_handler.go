// Package payment exposes the payment API over HTTP.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
)

// Service is the payment operations surface the handler depends on.
type Service interface {
	ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error)
	GetPaymentStatus(ctx context.Context, transactionID string) (*domain.PaymentResponse, error)
	CancelPayment(ctx context.Context, transactionID, reason string) (*domain.PaymentResponse, error)
	RefundPayment(ctx context.Context, transactionID string, req domain.RefundRequest) (*domain.PaymentResponse, error)
	ListPayments(ctx context.Context, filter domain.PaymentFilter) (*domain.PagedResult, error)
}

// Handler serves the /api/payment routes.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the payment routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/payment/process", h.ProcessPayment)
	r.Get("/api/payment", h.ListPayments)
	r.Get("/api/payment/{transactionId}/status", h.GetPaymentStatus)
	r.Post("/api/payment/{transactionId}/cancel", h.CancelPayment)
	r.Post("/api/payment/{transactionId}/refund", h.RefundPayment)
}

// processRequest is the wire shape for ProcessPayment. Method and
// currency arrive as strings and are parsed before the request crosses
// into the domain.
type processRequest struct {
	TransactionID string            `json:"transaction_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Customer      domain.Customer   `json:"customer"`
	Card          *domain.CardInput `json:"card,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var wire processRequest
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	method, err := domain.ParsePaymentMethod(wire.PaymentMethod)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid payment method"})
		return
	}
	currency, err := domain.ParseCurrency(wire.Currency)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid currency"})
		return
	}

	resp, err := h.service.ProcessPayment(r.Context(), domain.PaymentRequest{
		TransactionID: wire.TransactionID,
		Amount:        wire.Amount,
		Currency:      currency,
		PaymentMethod: method,
		Customer:      wire.Customer,
		Card:          wire.Card,
		Metadata:      wire.Metadata,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetPaymentStatus(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	var wire cancelRequest
	if r.Body != nil {
		// Cancellation reason is optional; an empty body means none.
		_ = json.NewDecoder(r.Body).Decode(&wire)
	}

	resp, err := h.service.CancelPayment(r.Context(), chi.URLParam(r, "transactionId"), wire.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var wire domain.RefundRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&wire)
	}

	resp, err := h.service.RefundPayment(r.Context(), chi.URLParam(r, "transactionId"), wire)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseFilter(r *http.Request) (domain.PaymentFilter, error) {
	q := r.URL.Query()
	var filter domain.PaymentFilter

	filter.CustomerID = q.Get("customer_id")

	if s := q.Get("status"); s != "" {
		status, err := domain.ParsePaymentStatus(s)
		if err != nil {
			return filter, errors.New("Invalid status filter")
		}
		filter.Status = &status
	}
	if s := q.Get("payment_method"); s != "" {
		method, err := domain.ParsePaymentMethod(s)
		if err != nil {
			return filter, errors.New("Invalid payment method filter")
		}
		filter.PaymentMethod = &method
	}
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, errors.New("Invalid from timestamp")
		}
		filter.From = &t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, errors.New("Invalid to timestamp")
		}
		filter.To = &t
	}
	if s := q.Get("page"); s != "" {
		filter.Page, _ = strconv.Atoi(s)
	}
	if s := q.Get("page_size"); s != "" {
		filter.PageSize, _ = strconv.Atoi(s)
	}

	return filter, nil
}

// writeError maps domain error codes to HTTP statuses. The response
// body carries the domain message; raw wrapped errors never leave the
// server.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		h.logger.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case domain.ErrorCodeRateLimited:
		status = http.StatusTooManyRequests
	case domain.ErrorCodeDuplicateTransaction:
		status = http.StatusConflict
	case domain.ErrorCodePaymentNotFound:
		status = http.StatusNotFound
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeInvalidDocument,
		domain.ErrorCodeInvalidCard, domain.ErrorCodeInvalidTransaction,
		domain.ErrorCodeInvalidAmount, domain.ErrorCodeInvalidTransition,
		domain.ErrorCodeRefundExceedsAmount:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: domainErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
