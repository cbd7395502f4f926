package aws

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the part of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads service secrets stored under a common name prefix, such
// as "catalog/". Values are cached for the life of the process.
type SecretsClient struct {
	api    SecretsAPI
	prefix string
	cache  map[string]string
	mu     sync.RWMutex
}

func NewSecretsClient(cfg sdkaws.Config, prefix string) *SecretsClient {
	return NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg), prefix)
}

func NewSecretsClientWithAPI(api SecretsAPI, prefix string) *SecretsClient {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &SecretsClient{api: api, prefix: prefix, cache: make(map[string]string)}
}

// GetSecret returns the string value of prefix+name.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	id := s.prefix + name

	s.mu.RLock()
	v, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(id)})
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	s.mu.Lock()
	s.cache[id] = *out.SecretString
	s.mu.Unlock()
	return *out.SecretString, nil
}
