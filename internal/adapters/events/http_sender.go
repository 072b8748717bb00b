package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brpay/payment-service/internal/domain"
)

// HTTPSender delivers events as signed JSON POSTs to a single endpoint
// (the event stream's ingest URL or the queue's enqueue URL).
type HTTPSender struct {
	endpoint   string
	secret     string
	httpClient *http.Client
}

// NewHTTPSender creates a sender for one endpoint. A nil client gets a
// 10 second timeout default.
func NewHTTPSender(endpoint, secret string, httpClient *http.Client) *HTTPSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSender{endpoint: endpoint, secret: secret, httpClient: httpClient}
}

// Send posts the serialized event with an HMAC-SHA256 signature header
// so consumers can verify origin.
func (s *HTTPSender) Send(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Signature", s.sign(payload))
	req.Header.Set("X-Event-Type", string(event.Type))
	req.Header.Set("X-Event-Id", event.ID)
	req.Header.Set("X-Event-Timestamp", event.Time.Format(time.RFC3339))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("event endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPSender) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
