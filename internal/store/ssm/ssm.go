// Package ssm implements store.SecretStore over AWS SSM Parameter Store.
// Parameters are tenant-prefixed hierarchical paths and every write is a
// SecureString; there is no plaintext write path.
package ssm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/alfredjeanlab/gridvault/internal/store"
)

// API is the subset of *ssm.Client the store uses; tests supply fakes.
type API interface {
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *awsssm.PutParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, params *awsssm.DeleteParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.DeleteParameterOutput, error)
}

// Store is a thin client over the parameter store. A single client instance
// is shared across tenants; isolation is enforced by path prefixing.
type Store struct {
	client API
	logger *slog.Logger
}

// Compile-time check that Store implements store.SecretStore.
var _ store.SecretStore = (*Store)(nil)

// New creates a Store using the default AWS credential chain. If endpoint is
// non-empty it overrides the SSM endpoint (for localstack and similar).
func New(ctx context.Context, region, endpoint string, logger *slog.Logger) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var opts []func(*awsssm.Options)
	if endpoint != "" {
		opts = append(opts, func(o *awsssm.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &Store{client: awsssm.NewFromConfig(cfg, opts...), logger: logger}, nil
}

// NewWithClient creates a Store over an existing client.
func NewWithClient(client API, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func (s *Store) GetParameter(ctx context.Context, name string) (string, bool, error) {
	out, err := s.client.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, nil
	}
	return *out.Parameter.Value, true, nil
}

func (s *Store) PutParameter(ctx context.Context, name, value string) error {
	_, err := s.client.PutParameter(ctx, &awsssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("put parameter %s: %w", name, err)
	}
	return nil
}

func (s *Store) DeleteParameter(ctx context.Context, name string) error {
	_, err := s.client.DeleteParameter(ctx, &awsssm.DeleteParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("delete parameter %s: %w", name, err)
	}
	return nil
}

func (s *Store) GetSigningSecret(ctx context.Context, tenantID, connector string) (string, bool, error) {
	return s.GetParameter(ctx, store.SigningSecretParameterName(tenantID, connector))
}

func (s *Store) StoreSigningSecret(ctx context.Context, tenantID, connector, value string) error {
	return s.PutParameter(ctx, store.SigningSecretParameterName(tenantID, connector), value)
}

func (s *Store) StoreAPIKey(ctx context.Context, tenantID, keyID, value string) error {
	return s.PutParameter(ctx, store.APIKeyParameterName(tenantID, keyID), value)
}

func (s *Store) DeleteAPIKey(ctx context.Context, tenantID, keyID string) error {
	return s.DeleteParameter(ctx, store.APIKeyParameterName(tenantID, keyID))
}
