package s3

import (
	"context"
	"strings"

	"rag-ingest/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3_config "github.com/aws/aws-sdk-go-v2/config"
	s3_credentials "github.com/aws/aws-sdk-go-v2/credentials"
	s3_provider "github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetClient builds an S3 client for MinIO-compatible object storage using
// the static credentials from config.
func GetClient() (*s3_provider.Client, error) {
	s3cfg := config.Cfg.S3
	region := s3cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3_config.LoadOptions) error{
		s3_config.WithRegion(region),
	}
	if s3cfg.AccessKey != "" {
		opts = append(opts, s3_config.WithCredentialsProvider(
			s3_credentials.NewStaticCredentialsProvider(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		))
	}

	awsCfg, err := s3_config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	cli := s3_provider.NewFromConfig(awsCfg, func(o *s3_provider.Options) {
		if strings.TrimSpace(s3cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
		}
		// MinIO requires path-style addressing
		o.UsePathStyle = true
	})
	return cli, nil
}
