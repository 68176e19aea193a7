package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3-compatible bucket. Endpoint is optional and
// enables non-AWS providers (MinIO, R2).
type S3Options struct {
	Region       string `yaml:"region" json:"region"`
	Bucket       string `yaml:"bucket" json:"bucket"`
	AccessKey    string `yaml:"access_key" json:"access_key"`
	SecretKey    string `yaml:"secret_key" json:"secret_key"`
	Endpoint     string `yaml:"endpoint" json:"endpoint"`
	CustomDomain string `yaml:"custom_domain" json:"custom_domain"`
	PathStyle    bool   `yaml:"path_style" json:"path_style"`
}

// S3Storage stores objects in an S3-compatible bucket.
type S3Storage struct {
	client *s3.Client
	opts   S3Options
}

// NewS3 builds an S3Storage from static credentials.
func NewS3(opts S3Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	so := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: opts.PathStyle,
	}
	if opts.Endpoint != "" {
		so.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return &S3Storage{client: s3.New(so), opts: opts}, nil
}

// Store uploads the object and returns its public URL.
func (s *S3Storage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.opts.CustomDomain != "" {
		return strings.TrimSuffix(s.opts.CustomDomain, "/") + "/" + key
	}
	if s.opts.Endpoint != "" {
		base := strings.TrimSuffix(s.opts.Endpoint, "/")
		if s.opts.PathStyle {
			return base + "/" + s.opts.Bucket + "/" + key
		}
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}
