package amp

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/giantswarm/mcp-amp/internal/server"
	"github.com/giantswarm/mcp-amp/internal/sigv4"
)

// credentialsProviderFor selects the signing credential source for the given
// configuration: explicit static credentials when present, otherwise the SDK
// default chain (environment, shared profile, instance role metadata).
func credentialsProviderFor(cfg server.AMPConfig) sigv4.CredentialsProvider {
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		return &sdkCredentials{
			provider: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken,
			),
		}
	}
	return &chainCredentials{region: cfg.Region, profile: cfg.Profile}
}

// sdkCredentials adapts an aws-sdk-go-v2 provider to the sigv4 interface.
type sdkCredentials struct {
	provider aws.CredentialsProvider
}

func (s *sdkCredentials) Retrieve(ctx context.Context) (sigv4.Credentials, error) {
	creds, err := s.provider.Retrieve(ctx)
	if err != nil {
		return sigv4.Credentials{}, fmt.Errorf("%w: %v", sigv4.ErrCredentialsMissing, err)
	}
	return sigv4.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}, nil
}

// chainCredentials resolves credentials through the SDK default chain. The
// chain is loaded lazily on first use and wrapped in the SDK's expiry-aware
// cache, so short-lived role credentials are reused until they expire and
// refreshed strictly before the declared expiry.
type chainCredentials struct {
	region  string
	profile string

	once     sync.Once
	provider aws.CredentialsProvider
	loadErr  error
}

func (c *chainCredentials) Retrieve(ctx context.Context) (sigv4.Credentials, error) {
	c.once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(c.region)}
		if c.profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(c.profile))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			c.loadErr = err
			return
		}
		c.provider = aws.NewCredentialsCache(cfg.Credentials)
	})
	if c.loadErr != nil {
		return sigv4.Credentials{}, fmt.Errorf("%w: %v", sigv4.ErrCredentialsMissing, c.loadErr)
	}
	creds, err := c.provider.Retrieve(ctx)
	if err != nil {
		return sigv4.Credentials{}, fmt.Errorf("%w: %v", sigv4.ErrCredentialsMissing, err)
	}
	return sigv4.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}, nil
}
