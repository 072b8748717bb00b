package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment.
// Transitions between statuses are governed by the table in status.go.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusApproved   PaymentStatus = "approved"
	StatusDeclined   PaymentStatus = "declined"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusRefunded   PaymentStatus = "refunded"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
)

// ParsePaymentStatus is the single string-to-status boundary. Statuses
// coming from storage or webhooks must pass through here so invalid
// strings never reach the state machine.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusDeclined:
		return StatusDeclined, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusRefunded:
		return StatusRefunded, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusExpired:
		return StatusExpired, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// PaymentMethod represents how the customer pays.
type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebit      PaymentMethod = "debit"
	MethodPix        PaymentMethod = "pix"
	MethodBoleto     PaymentMethod = "boleto"
)

// ParsePaymentMethod converts a wire string to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodCreditCard:
		return MethodCreditCard, nil
	case MethodDebit:
		return MethodDebit, nil
	case MethodPix:
		return MethodPix, nil
	case MethodBoleto:
		return MethodBoleto, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// IsCardMethod reports whether the method carries card details.
func (m PaymentMethod) IsCardMethod() bool {
	return m == MethodCreditCard || m == MethodDebit
}

// Currency is an ISO-4217 currency code.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency converts a wire string to a Currency.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyBRL:
		return CurrencyBRL, nil
	case CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyEUR:
		return CurrencyEUR, nil
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

// Address is the customer's address snapshot.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
}

// Customer is an immutable snapshot captured when the payment is
// created. It is never re-fetched afterwards.
type Customer struct {
	ID       string  `json:"customer_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Document string  `json:"document"`
	Address  Address `json:"address"`
}

// CardDetails holds the persisted card snapshot. Number is always the
// masked form; the raw PAN never reaches storage.
type CardDetails struct {
	MaskedNumber string `json:"masked_number"`
	HolderName   string `json:"holder_name"`
	Brand        string `json:"brand"`
}

// Fees breaks down the costs applied to a processed payment. All four
// fields are populated together once the gateway outcome is known.
type Fees struct {
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	GatewayFee    decimal.Decimal `json:"gateway_fee"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	NetAmount     decimal.Decimal `json:"net_amount"`
}

// Payment is the aggregate root. TransactionID is externally supplied,
// unique and immutable; it is the dedup key across the whole system.
type Payment struct {
	TransactionID        string
	Amount               decimal.Decimal
	Currency             Currency
	PaymentMethod        PaymentMethod
	Status               PaymentStatus
	AuthorizationCode    *string
	GatewayTransactionID string
	GatewayResponse      string
	ProcessedAt          *time.Time
	ProcessedAmount      decimal.Decimal
	Fees                 *Fees
	RefundedAmount       *decimal.Decimal
	Customer             Customer
	Card                 *CardDetails
	Metadata             map[string]string
	Message              string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// MaskCardNumber reduces a PAN to its first four and last four digits.
// Inputs shorter than eight digits are returned with digits only.
func MaskCardNumber(number string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(cleaned) < 8 {
		return cleaned
	}
	return cleaned[:4] + "****" + cleaned[len(cleaned)-4:]
}
