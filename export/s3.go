package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// API is the subset of the S3 client used to upload exports.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientConfig holds the S3 client settings. Empty fields fall back to the
// AWS default configuration chain.
type ClientConfig struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
	Credentials  aws.CredentialsProvider
}

// Object identifies an S3 object by bucket and key.
type Object struct {
	Bucket string
	Key    string
}

func (o Object) String() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// IsS3 returns true if file is an s3:// URL.
func IsS3(file string) bool {
	return strings.HasPrefix(strings.ToLower(file), "s3://")
}

// ParseS3 parses an s3://bucket/key URL.
func ParseS3(file string) (Object, error) {
	u, err := url.Parse(file)
	if err != nil {
		return Object{}, fmt.Errorf("invalid S3 URL '%s' (%w)", file, err)
	}

	if !strings.EqualFold(u.Scheme, "s3") {
		return Object{}, fmt.Errorf("invalid S3 URL '%s' - expected s3://<bucket>/<key>", file)
	}

	object := Object{
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}

	if object.Bucket == "" || object.Key == "" || strings.HasSuffix(object.Key, "/") {
		return Object{}, fmt.Errorf("invalid S3 URL '%s' - expected s3://<bucket>/<key>", file)
	}

	return object, nil
}

// ConfigFromEnv returns the client settings from BUDGET_SHEETS_S3_REGION,
// BUDGET_SHEETS_S3_ENDPOINT and BUDGET_SHEETS_S3_PATH_STYLE. Credentials
// come from the default AWS chain.
func ConfigFromEnv() ClientConfig {
	cfg := ClientConfig{
		Region:   strings.TrimSpace(os.Getenv("BUDGET_SHEETS_S3_REGION")),
		Endpoint: strings.TrimSpace(os.Getenv("BUDGET_SHEETS_S3_ENDPOINT")),
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("BUDGET_SHEETS_S3_PATH_STYLE"))) {
	case "1", "true", "yes":
		cfg.UsePathStyle = true
	}

	return cfg
}

// NewClient creates an S3 client. A custom endpoint supports S3 compatible
// stores such as MinIO.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Credentials != nil {
		opts = append(opts, config.WithCredentialsProvider(cfg.Credentials))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS configuration (%w)", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}

		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// StaticCredentials returns a fixed credentials provider.
func StaticCredentials(key, secret string) aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(key, secret, "")
}

// Upload writes body to the S3 object, replacing any existing object.
func Upload(ctx context.Context, client API, object Object, body []byte, contentType string) error {
	if client == nil {
		return errors.New("s3: client is required")
	}

	input := s3.PutObjectInput{
		Bucket:        aws.String(object.Bucket),
		Key:           aws.String(object.Key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}

	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := client.PutObject(ctx, &input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("s3: put %v: %s (%w)", object, apiErr.ErrorCode(), err)
		}

		return fmt.Errorf("s3: put %v: %w", object, err)
	}

	return nil
}

// ContentType returns the MIME type for an export format.
func ContentType(format string, compressed bool) string {
	if compressed {
		return "application/zstd"
	}

	switch format {
	case "json":
		return "application/json"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "parquet":
		return "application/vnd.apache.parquet"
	default:
		return "text/tab-separated-values"
	}
}
