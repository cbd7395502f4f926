package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options overrides the default AWS credential chain. Empty fields fall back to
// the SDK defaults.
type Options struct {
	Region          string
	Endpoint        string // LocalStack or another S3/DynamoDB-compatible endpoint
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig loads AWS config. When an endpoint is set every client built
// from the config targets it, so a single LocalStack edge port serves all
// services.
func LoadAWSConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}
