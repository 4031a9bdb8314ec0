package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// NeedsSecrets reports whether any setting must be fetched from AWS Secrets Manager.
func (c *AppConfig) NeedsSecrets() bool {
	return c.Database.PasswordSecretARN != "" || c.Mongo.URISecretARN != ""
}

// NewSecretsClient creates a Secrets Manager client for the given region.
func NewSecretsClient(region string) (secretsmanageriface.SecretsManagerAPI, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return secretsmanager.New(sess), nil
}

// ResolveSecrets replaces credential values with the secrets referenced by their ARNs.
// Plain values are left untouched when no ARN is configured.
func ResolveSecrets(ctx context.Context, c *AppConfig, sm secretsmanageriface.SecretsManagerAPI) error {
	if c.Database.PasswordSecretARN != "" {
		v, err := fetchSecret(ctx, sm, c.Database.PasswordSecretARN)
		if err != nil {
			return fmt.Errorf("resolve DB_PASSWORD_SECRET_ARN: %w", err)
		}
		c.Database.Password = v
	}
	if c.Mongo.URISecretARN != "" {
		v, err := fetchSecret(ctx, sm, c.Mongo.URISecretARN)
		if err != nil {
			return fmt.Errorf("resolve MONGO_URI_SECRET_ARN: %w", err)
		}
		c.Mongo.URI = v
	}
	return nil
}

func fetchSecret(ctx context.Context, sm secretsmanageriface.SecretsManagerAPI, arn string) (string, error) {
	out, err := sm.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", errors.New("secret value is nil")
	}
	return *out.SecretString, nil
}
