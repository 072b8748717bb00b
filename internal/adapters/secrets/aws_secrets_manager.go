// Package secrets provides the secret backend adapters: AWS Secrets
// Manager, HashiCorp Vault, and a plain environment-variable manager
// for local development.
package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/brpay/payment-service/internal/domain/ports"
)

// AWSConfig contains configuration for the AWS Secrets Manager adapter
type AWSConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Cache TTL for secrets (default: 5 minutes)
	CacheTTL time.Duration
}

// awsSecretsManager implements the SecretManager port backed by AWS
// Secrets Manager, with a TTL cache in front of the API.
type awsSecretsManager struct {
	client *secretsmanager.Client
	cache  *secretCache
	logger *zap.Logger
}

// secretCache is a simple TTL cache shared by the network-backed
// adapters. A zero TTL disables caching.
type secretCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func newSecretCache(ttl time.Duration) *secretCache {
	return &secretCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func (c *secretCache) get(name string, now time.Time) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok || now.After(e.expiresAt) {
		delete(c.entries, name)
		return "", false
	}
	return e.value, true
}

func (c *secretCache) put(name, value string, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cacheEntry{value: value, expiresAt: now.Add(c.ttl)}
}

// NewAWSSecretsManager creates a Secrets Manager backed adapter using
// the default credential chain (IAM role in production, profile for
// local development).
func NewAWSSecretsManager(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (ports.SecretManager, error) {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	client := secretsmanager.NewFromConfig(awsCfg, clientOptions...)

	logger.Info("AWS Secrets Manager adapter initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", cfg.CacheTTL))

	return &awsSecretsManager{
		client: client,
		cache:  newSecretCache(cfg.CacheTTL),
		logger: logger,
	}, nil
}

// GetSecret retrieves a secret by name or full ARN.
func (a *awsSecretsManager) GetSecret(ctx context.Context, name string) (string, error) {
	now := time.Now()
	if v, ok := a.cache.get(name, now); ok {
		return v, nil
	}

	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		a.logger.Error("failed to retrieve secret", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}

	value := aws.ToString(result.SecretString)
	a.cache.put(name, value, now)
	return value, nil
}
