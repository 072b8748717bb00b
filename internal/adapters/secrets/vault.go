package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// KV v2 secrets engine mount path (default: "secret")
	MountPath string

	// Cache TTL for secrets (default: 5 minutes)
	CacheTTL time.Duration
}

// vaultSecretManager implements the SecretManager port against a KV v2
// secrets engine. Secret names are paths under the mount; the value is
// read from the "value" key of the stored data.
type vaultSecretManager struct {
	client *vault.Client
	mount  string
	cache  *secretCache
	logger *zap.Logger
}

// NewVaultSecretManager creates a Vault backed adapter with token
// authentication.
func NewVaultSecretManager(cfg VaultConfig, logger *zap.Logger) (ports.SecretManager, error) {
	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create Vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath))

	return &vaultSecretManager{
		client: client,
		mount:  cfg.MountPath,
		cache:  newSecretCache(cfg.CacheTTL),
		logger: logger,
	}, nil
}

func (v *vaultSecretManager) GetSecret(ctx context.Context, name string) (string, error) {
	now := time.Now()
	if cached, ok := v.cache.get(name, now); ok {
		return cached, nil
	}

	secret, err := v.client.KVv2(v.mount).Get(ctx, name)
	if err != nil {
		v.logger.Error("failed to read Vault secret", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}

	raw, ok := secret.Data["value"]
	if !ok {
		return "", fmt.Errorf("secret %s has no value key", name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("secret %s value is not a string", name)
	}

	v.cache.put(name, value, now)
	return value, nil
}
