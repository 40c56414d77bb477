package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientConfig locates the bucket service. An empty Endpoint means AWS
// itself; set it to reach MinIO or another S3 compatible store.
type S3ClientConfig struct {
	Endpoint        string `env:"S3_ENDPOINT_URL"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

func (c S3ClientConfig) credentialsProvider(ctx context.Context, awsCfg aws.Config) aws.CredentialsProvider {
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")
	}
	// Published checkpoints usually sit in public buckets.
	if awsCfg.Credentials == nil {
		return aws.AnonymousCredentials{}
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return aws.AnonymousCredentials{}
	}
	return awsCfg.Credentials
}

func newS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	var opts []func(*aws_config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, aws_config.WithRegion(cfg.Region))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	awsCfg.Credentials = cfg.credentialsProvider(ctx, awsCfg)

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true // MinIO
	}), nil
}
