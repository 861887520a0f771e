package alertforward

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// credentials of notification destinations are not in env, but in a secret store
type SecretStore interface {
	GetSecretString(ctx context.Context, name string) (string, error)
}

type SecretsManagerStore struct {
	svc secretsmanageriface.SecretsManagerAPI
}

func NewSecretsManagerStore(svc secretsmanageriface.SecretsManagerAPI) *SecretsManagerStore {
	return &SecretsManagerStore{svc}
}

func (s *SecretsManagerStore) GetSecretString(ctx context.Context, name string) (string, error) {
	secret, err := s.svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("GetSecretValue %s: %w", name, err)
	}

	if secret.SecretString == nil {
		return "", fmt.Errorf("secret %s is binary; expecting string", name)
	}

	return *secret.SecretString, nil
}
