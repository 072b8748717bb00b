package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brpay/payment-service/internal/domain/ports"
)

// envSecretManager resolves secrets from environment variables for
// local development. A name like "payments/webhook-secret" maps to
// PAYMENTS_WEBHOOK_SECRET.
type envSecretManager struct{}

// NewEnvSecretManager creates the env-backed manager.
func NewEnvSecretManager() ports.SecretManager {
	return envSecretManager{}
}

func (envSecretManager) GetSecret(_ context.Context, name string) (string, error) {
	key := strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name))
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret %s not set (env %s)", name, key)
	}
	return value, nil
}
