package ports

import (
	"context"

	"github.com/brpay/payment-service/internal/domain"
)

// PaymentStore is the persistence seam for Payment aggregates.
//
// Create must fail with domain.ErrDuplicateTransaction when the
// transaction id already exists: the store-level uniqueness constraint
// is the authoritative backstop behind the orchestrator's
// check-then-create sequence.
type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int64, error)
}
