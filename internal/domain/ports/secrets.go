package ports

import "context"

// SecretManager resolves named secrets at startup (database password,
// webhook signing secret). Implementations: AWS Secrets Manager, Vault,
// and an env-backed manager for local development.
type SecretManager interface {
	GetSecret(ctx context.Context, name string) (string, error)
}
