package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsAPI struct {
	values map[string]string
	calls  []string
}

func (f *fakeSecretsAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	id := sdkaws.ToString(in.SecretId)
	f.calls = append(f.calls, id)
	v, ok := f.values[id]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestSecretsClient_PrefixAndCache(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"catalog/JWT_SECRET": "s3cret"}}
	client := NewSecretsClientWithAPI(api, "catalog")

	for i := 0; i < 2; i++ {
		v, err := client.GetSecret(context.Background(), "JWT_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", v)
	}
	assert.Equal(t, []string{"catalog/JWT_SECRET"}, api.calls)

	_, err := client.GetSecret(context.Background(), "MONGO_URI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog/MONGO_URI")
}
