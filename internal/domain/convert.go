package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// CardInput carries the raw card details of an inbound request. It
// exists only in memory during processing; persistence only ever sees
// the masked snapshot produced by NewPaymentFromRequest.
type CardInput struct {
	Number      string `json:"number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	Brand       string `json:"brand"`
}

// PaymentRequest is the inbound request shape for ProcessPayment.
type PaymentRequest struct {
	TransactionID string            `json:"transaction_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      Currency          `json:"currency"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Customer      Customer          `json:"customer"`
	Card          *CardInput        `json:"card,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RefundRequest is the inbound request shape for RefundPayment.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// WebhookNotification is an asynchronous status update delivered by the
// gateway or a partner system.
type WebhookNotification struct {
	TransactionID        string          `json:"transaction_id"`
	Status               PaymentStatus   `json:"status"`
	Amount               decimal.Decimal `json:"amount"`
	GatewayTransactionID string          `json:"gateway_transaction_id"`
	GatewayResponse      string          `json:"gateway_response,omitempty"`
	EventType            string          `json:"event_type,omitempty"`
	EventDate            time.Time       `json:"event_date"`
}

// PaymentResponse is the outbound shape for every payment operation.
// Failures are expressed as a Failed status plus a message, never as a
// bare error crossing the service boundary.
type PaymentResponse struct {
	TransactionID     string          `json:"transaction_id"`
	Status            PaymentStatus   `json:"status"`
	AuthorizationCode *string         `json:"authorization_code,omitempty"`
	ProcessedAt       time.Time       `json:"processed_at"`
	ProcessedAmount   decimal.Decimal `json:"processed_amount"`
	Fees              *Fees           `json:"fees,omitempty"`
	Message           string          `json:"message,omitempty"`
}

// PaymentFilter selects payments for listing. Zero-valued fields are
// ignored.
type PaymentFilter struct {
	Status        *PaymentStatus
	CustomerID    string
	PaymentMethod *PaymentMethod
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps pagination to sane bounds: page ≥ 1, page size in
// [1, 100] with a default of 20.
func (f *PaymentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
}

// PagedResult wraps a listing page with its totals.
type PagedResult struct {
	Items      []PaymentResponse `json:"items"`
	TotalItems int64             `json:"total_items"`
	TotalPages int               `json:"total_pages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// NewPagedResult computes total pages from the item count.
func NewPagedResult(items []PaymentResponse, total int64, page, pageSize int) PagedResult {
	pages := 0
	if pageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return PagedResult{
		Items:      items,
		TotalItems: total,
		TotalPages: pages,
		Page:       page,
		PageSize:   pageSize,
	}
}

// NewPaymentFromRequest converts an inbound request to a fresh Payment
// in Processing status. The conversion is total: every persisted field
// derives from the request or from the given timestamp, and the card
// number is masked before it ever touches the aggregate.
func NewPaymentFromRequest(req PaymentRequest, now time.Time) *Payment {
	p := &Payment{
		TransactionID:   req.TransactionID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusProcessing,
		ProcessedAmount: decimal.Zero,
		Customer:        req.Customer,
		Metadata:        req.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Card != nil {
		p.Card = &CardDetails{
			MaskedNumber: MaskCardNumber(req.Card.Number),
			HolderName:   req.Card.HolderName,
			Brand:        req.Card.Brand,
		}
	}
	return p
}

// ToResponse converts the persisted aggregate to its response shape.
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		TransactionID:     p.TransactionID,
		Status:            p.Status,
		AuthorizationCode: p.AuthorizationCode,
		ProcessedAmount:   p.ProcessedAmount,
		Fees:              p.Fees,
		Message:           p.Message,
	}
	if p.ProcessedAt != nil {
		resp.ProcessedAt = *p.ProcessedAt
	} else {
		resp.ProcessedAt = p.UpdatedAt
	}
	return resp
}

// FailedResponse builds the Failed-shaped response used for every
// recovered error: zero processed amount, no fees, just the message.
func FailedResponse(transactionID, message string, now time.Time) PaymentResponse {
	return PaymentResponse{
		TransactionID:   transactionID,
		Status:          StatusFailed,
		ProcessedAt:     now,
		ProcessedAmount: decimal.Zero,
		Message:         message,
	}
}
