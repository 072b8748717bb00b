// Package postgres implements the PaymentStore port on PostgreSQL via
// pgx. The payments table carries a unique constraint on
// transaction_id; violation of that constraint is surfaced as
// domain.ErrDuplicateTransaction so the orchestrator can tell a lost
// create race apart from a generic store failure.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/pkg/timeutil"
)

const uniqueViolation = "23505"

// PaymentRepository implements ports.PaymentStore.
type PaymentRepository struct {
	pool   *pgxpool.Pool
	clock  timeutil.Clock
	logger *zap.Logger
}

// NewPaymentRepository creates a repository over an existing pool.
func NewPaymentRepository(pool *pgxpool.Pool, clock timeutil.Clock, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{pool: pool, clock: clock, logger: logger}
}

const paymentColumns = `transaction_id, amount, currency, payment_method, status,
	authorization_code, gateway_transaction_id, gateway_response,
	processed_at, processed_amount,
	processing_fee, gateway_fee, total_fees, net_amount, refunded_amount,
	customer_id, customer_name, customer_email, customer_document,
	address_street, address_number, address_complement, address_neighborhood,
	address_city, address_state, address_zip_code, address_country,
	card_number_masked, card_holder_name, card_brand,
	metadata, message, created_at, updated_at`

// Create persists a new payment. A transaction-id collision maps to
// domain.ErrDuplicateTransaction.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	amount, err := numericFromDecimal(p.Amount)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeStoreError, "encode amount", err)
	}
	processedAmount, err := numericFromDecimal(p.ProcessedAmount)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeStoreError, "encode processed amount", err)
	}

	metadata := []byte("{}")
	if p.Metadata != nil {
		metadata, err = json.Marshal(p.Metadata)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "marshal metadata", err)
		}
	}

	var cardMasked, cardHolder, cardBrand pgtype.Text
	if p.Card != nil {
		cardMasked = nullText(p.Card.MaskedNumber)
		cardHolder = nullText(p.Card.HolderName)
		cardBrand = nullText(p.Card.Brand)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO payments (
			transaction_id, amount, currency, payment_method, status,
			processed_amount,
			customer_id, customer_name, customer_email, customer_document,
			address_street, address_number, address_complement, address_neighborhood,
			address_city, address_state, address_zip_code, address_country,
			card_number_masked, card_holder_name, card_brand,
			metadata, message, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24, $25
		)`,
		p.TransactionID, amount, string(p.Currency), string(p.PaymentMethod), string(p.Status),
		processedAmount,
		p.Customer.ID, p.Customer.Name, p.Customer.Email, p.Customer.Document,
		p.Customer.Address.Street, p.Customer.Address.Number,
		nullText(p.Customer.Address.Complement), p.Customer.Address.Neighborhood,
		p.Customer.Address.City, p.Customer.Address.State,
		p.Customer.Address.ZipCode, p.Customer.Address.Country,
		cardMasked, cardHolder, cardBrand,
		metadata, nullText(p.Message), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		return domain.WrapError(domain.ErrorCodeStoreError, "create payment", err)
	}
	return nil
}

// GetByTransactionID fetches a payment or domain.ErrPaymentNotFound.
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`,
		transactionID)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeStoreError, "get payment", err)
	}
	return p, nil
}

// Update rewrites the mutable fields of an existing payment and
// refreshes updated_at.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	processedAmount, err := numericFromDecimal(p.ProcessedAmount)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeStoreError, "encode processed amount", err)
	}

	var processingFee, gatewayFee, totalFees, netAmount pgtype.Numeric
	if p.Fees != nil {
		if processingFee, err = numericFromDecimal(p.Fees.ProcessingFee); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "encode fees", err)
		}
		if gatewayFee, err = numericFromDecimal(p.Fees.GatewayFee); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "encode fees", err)
		}
		if totalFees, err = numericFromDecimal(p.Fees.TotalFees); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "encode fees", err)
		}
		if netAmount, err = numericFromDecimal(p.Fees.NetAmount); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "encode fees", err)
		}
	}

	var refundedAmount pgtype.Numeric
	if p.RefundedAmount != nil {
		if refundedAmount, err = numericFromDecimal(*p.RefundedAmount); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreError, "encode refunded amount", err)
		}
	}

	var authCode pgtype.Text
	if p.AuthorizationCode != nil {
		authCode = nullText(*p.AuthorizationCode)
	}

	now := r.clock.Now()
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET
			status = $2,
			authorization_code = $3,
			gateway_transaction_id = $4,
			gateway_response = $5,
			processed_at = $6,
			processed_amount = $7,
			processing_fee = $8,
			gateway_fee = $9,
			total_fees = $10,
			net_amount = $11,
			refunded_amount = $12,
			message = $13,
			updated_at = $14
		WHERE transaction_id = $1`,
		p.TransactionID, string(p.Status), authCode,
		nullText(p.GatewayTransactionID), nullText(p.GatewayResponse),
		p.ProcessedAt, processedAmount,
		processingFee, gatewayFee, totalFees, netAmount, refundedAmount,
		nullText(p.Message), now,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeStoreError, "update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	p.UpdatedAt = now
	return nil
}

// List returns a page of payments matching the filter, newest first,
// plus the total match count.
func (r *PaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int64, error) {
	filter.Normalize()

	where, args := buildFilter(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.WrapError(domain.ErrorCodeStoreError, "count payments", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)
	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.WrapError(domain.ErrorCodeStoreError, "list payments", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, domain.WrapError(domain.ErrorCodeStoreError, "scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.WrapError(domain.ErrorCodeStoreError, "iterate payments", err)
	}
	return payments, total, nil
}

func buildFilter(filter domain.PaymentFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.PaymentMethod != nil {
		add("payment_method = $%d", string(*filter.PaymentMethod))
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p               domain.Payment
		amount          pgtype.Numeric
		processedAmount pgtype.Numeric
		processingFee   pgtype.Numeric
		gatewayFee      pgtype.Numeric
		totalFees       pgtype.Numeric
		netAmount       pgtype.Numeric
		refundedAmount  pgtype.Numeric
		currency        string
		method          string
		status          string
		authCode        pgtype.Text
		gatewayTxnID    pgtype.Text
		gatewayResp     pgtype.Text
		processedAt     *time.Time
		complement      pgtype.Text
		cardMasked      pgtype.Text
		cardHolder      pgtype.Text
		cardBrand       pgtype.Text
		metadata        []byte
		message         pgtype.Text
	)

	err := row.Scan(
		&p.TransactionID, &amount, &currency, &method, &status,
		&authCode, &gatewayTxnID, &gatewayResp,
		&processedAt, &processedAmount,
		&processingFee, &gatewayFee, &totalFees, &netAmount, &refundedAmount,
		&p.Customer.ID, &p.Customer.Name, &p.Customer.Email, &p.Customer.Document,
		&p.Customer.Address.Street, &p.Customer.Address.Number, &complement,
		&p.Customer.Address.Neighborhood, &p.Customer.Address.City,
		&p.Customer.Address.State, &p.Customer.Address.ZipCode, &p.Customer.Address.Country,
		&cardMasked, &cardHolder, &cardBrand,
		&metadata, &message, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Amount, err = numericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	if p.ProcessedAmount, err = numericToDecimal(processedAmount); err != nil {
		return nil, fmt.Errorf("decode processed amount: %w", err)
	}

	if p.Currency, err = domain.ParseCurrency(currency); err != nil {
		return nil, err
	}
	if p.PaymentMethod, err = domain.ParsePaymentMethod(method); err != nil {
		return nil, err
	}
	if p.Status, err = domain.ParsePaymentStatus(status); err != nil {
		return nil, err
	}

	if authCode.Valid {
		p.AuthorizationCode = &authCode.String
	}
	p.GatewayTransactionID = gatewayTxnID.String
	p.GatewayResponse = gatewayResp.String
	p.ProcessedAt = processedAt
	p.Customer.Address.Complement = complement.String
	p.Message = message.String

	if processingFee.Valid {
		fees := domain.Fees{}
		if fees.ProcessingFee, err = numericToDecimal(processingFee); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
		if fees.GatewayFee, err = numericToDecimal(gatewayFee); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
		if fees.TotalFees, err = numericToDecimal(totalFees); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
		if fees.NetAmount, err = numericToDecimal(netAmount); err != nil {
			return nil, fmt.Errorf("decode fees: %w", err)
		}
		p.Fees = &fees
	}

	if refundedAmount.Valid {
		var refunded decimal.Decimal
		if refunded, err = numericToDecimal(refundedAmount); err != nil {
			return nil, fmt.Errorf("decode refunded amount: %w", err)
		}
		p.RefundedAmount = &refunded
	}

	if cardMasked.Valid {
		p.Card = &domain.CardDetails{
			MaskedNumber: cardMasked.String,
			HolderName:   cardHolder.String,
			Brand:        cardBrand.String,
		}
	}

	if len(metadata) > 0 && string(metadata) != "{}" {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return &p, nil
}
