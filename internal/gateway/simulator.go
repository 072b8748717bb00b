// Package gateway provides the simulated payment gateway adapter. The
// real settlement network is out of scope; this adapter reproduces its
// contract: card and debit resolve synchronously, boleto resolves to
// Pending awaiting webhook confirmation, PIX approves instantly.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain"
	"github.com/brpay/payment-service/internal/domain/ports"
	"github.com/brpay/payment-service/pkg/timeutil"
)

// Config tunes the simulator.
type Config struct {
	// Latency added per call to mimic a network round trip. Zero in
	// tests.
	Latency time.Duration
}

// Simulator implements ports.PaymentGateway.
type Simulator struct {
	cfg    Config
	clock  timeutil.Clock
	logger *zap.Logger
}

// NewSimulator creates a simulated gateway.
func NewSimulator(cfg Config, clock timeutil.Clock, logger *zap.Logger) *Simulator {
	return &Simulator{cfg: cfg, clock: clock, logger: logger}
}

// ProcessCreditCard approves unless the card number ends in "0000".
func (s *Simulator) ProcessCreditCard(ctx context.Context, req domain.PaymentRequest) (*ports.GatewayResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	approved := req.Card != nil && !strings.HasSuffix(digits(req.Card.Number), "0000")
	result := s.cardResult(req, approved, "Payment approved successfully", "Card declined by issuer")

	s.logger.Info("credit card payment processed",
		zap.String("transaction_id", req.TransactionID),
		zap.String("status", string(result.Status)))
	return result, nil
}

// ProcessDebit approves unless the card number ends in "1111".
func (s *Simulator) ProcessDebit(ctx context.Context, req domain.PaymentRequest) (*ports.GatewayResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	approved := req.Card != nil && !strings.HasSuffix(digits(req.Card.Number), "1111")
	result := s.cardResult(req, approved, "Debit payment approved successfully", "Insufficient funds")

	s.logger.Info("debit payment processed",
		zap.String("transaction_id", req.TransactionID),
		zap.String("status", string(result.Status)))
	return result, nil
}

// ProcessPix always approves with a PIX end-to-end code.
func (s *Simulator) ProcessPix(ctx context.Context, req domain.PaymentRequest) (*ports.GatewayResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	code := fmt.Sprintf("PIX%010d", rand.Int63n(1e10))
	s.logger.Info("pix payment processed", zap.String("transaction_id", req.TransactionID))
	return &ports.GatewayResult{
		Status:            domain.StatusApproved,
		AuthorizationCode: &code,
		ProcessedAmount:   req.Amount,
		ProcessedAt:       s.clock.Now(),
		Message:           "PIX payment processed successfully",
	}, nil
}

// ProcessBoleto issues a bank slip; the payment stays Pending until a
// webhook confirms settlement.
func (s *Simulator) ProcessBoleto(ctx context.Context, req domain.PaymentRequest) (*ports.GatewayResult, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}

	code := fmt.Sprintf("BOL%08d", rand.Int31n(1e8))
	s.logger.Info("boleto generated", zap.String("transaction_id", req.TransactionID))
	return &ports.GatewayResult{
		Status:            domain.StatusPending,
		AuthorizationCode: &code,
		ProcessedAmount:   req.Amount,
		ProcessedAt:       s.clock.Now(),
		Message:           "Boleto generated successfully",
	}, nil
}

func (s *Simulator) cardResult(req domain.PaymentRequest, approved bool, okMsg, declineMsg string) *ports.GatewayResult {
	// The amount the gateway processed is echoed back on declines too,
	// matching acquirer behavior.
	result := &ports.GatewayResult{
		ProcessedAmount: req.Amount,
		ProcessedAt:     s.clock.Now(),
	}
	if approved {
		code := fmt.Sprintf("AUTH%06d", rand.Int31n(900000)+100000)
		result.Status = domain.StatusApproved
		result.AuthorizationCode = &code
		result.Message = okMsg
	} else {
		result.Status = domain.StatusDeclined
		result.Message = declineMsg
	}
	return result
}

func (s *Simulator) simulateLatency(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
