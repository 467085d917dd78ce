package config

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config points at an S3-compatible bucket (Cloudflare R2 in production)
// used for JSON backups. Credentials come from config or R2_* variables.
type R2Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
}

var ErrBackupNotConfigured = errors.New("backup storage is not configured")

func (r R2Config) Configured() bool {
	return r.Endpoint != "" && r.AccessKey != "" && r.SecretKey != "" && r.Bucket != ""
}

// NewR2Client builds an S3 client for the configured endpoint.
func NewR2Client(ctx context.Context, r R2Config) (*s3.Client, error) {
	if !r.Configured() {
		return nil, ErrBackupNotConfigured
	}
	region := r.Region
	if region == "" {
		region = "auto"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.AccessKey,
			r.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r.Endpoint)
		o.UsePathStyle = true
	}), nil
}
