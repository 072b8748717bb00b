package events_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brpay/payment-service/internal/adapters/events"
	"github.com/brpay/payment-service/internal/domain"
)

func TestHTTPSender_SignsAndPosts(t *testing.T) {
	const secret = "test-secret"

	var gotBody []byte
	var gotSignature, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Event-Signature")
		gotType = r.Header.Get("X-Event-Type")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := events.NewHTTPSender(server.URL, secret, server.Client())
	event := testEvent(domain.EventPaymentProcessed)

	err := sender.Send(context.Background(), event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "tx-1", decoded["transaction_id"])
	assert.Equal(t, "Payment.Processed", gotType)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestHTTPSender_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	sender := events.NewHTTPSender(server.URL, "secret", server.Client())
	err := sender.Send(context.Background(), testEvent(domain.EventPaymentFailed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
