package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a domain event emitted by the payment lifecycle.
type EventType string

const (
	EventPaymentProcessed     EventType = "Payment.Processed"
	EventPaymentFailed        EventType = "Payment.Failed"
	EventPaymentRefunded      EventType = "Payment.Refunded"
	EventPaymentCancelled     EventType = "Payment.Cancelled"
	EventPaymentStatusChanged EventType = "Payment.StatusChanged"
	EventHighValueTransaction EventType = "Payment.HighValue"
)

// Destination is a routing hint for the event publisher.
type Destination int

const (
	// DestinationStream routes to the primary event stream.
	DestinationStream Destination = iota
	// DestinationQueue routes to the durable message queue.
	DestinationQueue
	// DestinationBoth fans out to stream and queue.
	DestinationBoth
)

// DestinationFor returns the routing hint for an event type. The rule
// is owned here, not by the publisher: processed outcomes go to the
// stream, failure and money-movement events go to the durable queue,
// and high-value transactions fan out to both.
func DestinationFor(t EventType) Destination {
	switch t {
	case EventPaymentProcessed:
		return DestinationStream
	case EventHighValueTransaction:
		return DestinationBoth
	default:
		return DestinationQueue
	}
}

// EventPayload is the closed set of typed event payloads. Each event
// type has its own payload struct so consumers get checked shapes
// instead of a free-form object.
type EventPayload interface {
	isEventPayload()
}

// PaymentProcessedPayload accompanies EventPaymentProcessed and
// EventHighValueTransaction for approved outcomes.
type PaymentProcessedPayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    string          `json:"customer_id"`
}

// PaymentFailedPayload accompanies EventPaymentFailed.
type PaymentFailedPayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    string          `json:"customer_id"`
	Reason        string          `json:"reason"`
}

// PaymentRefundedPayload accompanies EventPaymentRefunded.
type PaymentRefundedPayload struct {
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Reason       string          `json:"reason,omitempty"`
}

// PaymentCancelledPayload accompanies EventPaymentCancelled.
type PaymentCancelledPayload struct {
	Status PaymentStatus `json:"status"`
	Reason string        `json:"reason"`
}

// StatusChangedPayload accompanies EventPaymentStatusChanged for
// webhook-driven updates.
type StatusChangedPayload struct {
	PreviousStatus PaymentStatus `json:"previous_status"`
	NewStatus      PaymentStatus `json:"new_status"`
	Source         string        `json:"source"`
}

// HighValuePayload accompanies EventHighValueTransaction.
type HighValuePayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    string          `json:"customer_id"`
	Threshold     decimal.Decimal `json:"threshold"`
}

func (PaymentProcessedPayload) isEventPayload() {}
func (PaymentFailedPayload) isEventPayload()    {}
func (PaymentRefundedPayload) isEventPayload()  {}
func (PaymentCancelledPayload) isEventPayload() {}
func (StatusChangedPayload) isEventPayload()    {}
func (HighValuePayload) isEventPayload()        {}

// Event is the envelope published to downstream consumers.
type Event struct {
	ID            string       `json:"event_id"`
	Type          EventType    `json:"event_type"`
	TransactionID string       `json:"transaction_id"`
	Subject       string       `json:"subject"`
	Time          time.Time    `json:"event_time"`
	DataVersion   string       `json:"data_version"`
	Data          EventPayload `json:"data"`
}

// NewEvent builds an event envelope with a fresh id and the standard
// payment subject.
func NewEvent(t EventType, transactionID string, now time.Time, data EventPayload) Event {
	return Event{
		ID:            uuid.New().String(),
		Type:          t,
		TransactionID: transactionID,
		Subject:       fmt.Sprintf("payment/%s/%s", transactionID, t),
		Time:          now,
		DataVersion:   "1.0",
		Data:          data,
	}
}
