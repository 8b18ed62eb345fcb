package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"cosmosdump/internal/shared/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink persists the encoded dump in one operation
type Sink interface {
	Write(ctx context.Context, data []byte) error
	// Location is where the dump ends up, for logs
	Location() string
}

// FileSink writes to a local path, creating or truncating it
type FileSink struct {
	Path string
}

// Write implements Sink
func (s FileSink) Write(_ context.Context, data []byte) error {
	return os.WriteFile(s.Path, data, 0o644)
}

// Location implements Sink
func (s FileSink) Location() string { return s.Path }

// S3Client is the subset of *s3.Client used by S3Sink
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads the dump as a single object
type S3Sink struct {
	Client      S3Client
	Bucket      string
	Key         string
	ContentType string
}

// Write implements Sink
func (s S3Sink) Write(ctx context.Context, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
		Body:   bytes.NewReader(data),
	}
	if s.ContentType != "" {
		input.ContentType = aws.String(s.ContentType)
	}
	_, err := s.Client.PutObject(ctx, input)
	return err
}

// Location implements Sink
func (s S3Sink) Location() string { return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key) }

// ParseS3URL splits s3://bucket/key. ok is false for anything else.
func ParseS3URL(dest string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(dest, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", false
	}
	return bucket, key, true
}

// NewSink picks a sink for dest. An s3:// URL uploads to S3 using the
// default AWS credential chain; anything else is a local path.
func NewSink(ctx context.Context, dest, region string, enc Encoder) (Sink, error) {
	if !strings.HasPrefix(dest, "s3://") {
		return FileSink{Path: dest}, nil
	}

	bucket, key, ok := ParseS3URL(dest)
	if !ok {
		return nil, errors.NewConfigurationError(fmt.Sprintf("invalid S3 destination %q, expected s3://bucket/key", dest)).
			WithCause(errors.ErrInvalidDestination).
			WithComponent("output")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to load AWS configuration").
			WithCause(err).
			WithComponent("output")
	}

	return S3Sink{
		Client:      s3.NewFromConfig(cfg),
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType(enc),
	}, nil
}

func contentType(enc Encoder) string {
	switch enc.Extension() {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return ""
	}
}
