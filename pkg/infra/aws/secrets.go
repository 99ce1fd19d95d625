package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/m-mizutani/goerr/v2"
)

// SecretSource resolves signature-secret references (Secrets Manager
// ARNs or names) to raw secret bytes.
type SecretSource struct {
	client *secretsmanager.Client
}

// NewSecretSource creates a source on the base config.
func NewSecretSource(cfg aws.Config) *SecretSource {
	return &SecretSource{client: secretsmanager.NewFromConfig(cfg)}
}

// Resolve fetches the secret value; string secrets are returned as
// their UTF-8 bytes.
func (s *SecretSource) Resolve(ctx context.Context, ref string) ([]byte, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "get secret value", goerr.V("secret", ref))
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	return out.SecretBinary, nil
}
