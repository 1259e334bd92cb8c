package candidates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxDatasetBytes bounds the object read from S3.
const maxDatasetBytes = 32 << 20

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a dataset object in the reference layout from S3.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Key    string
}

// NewS3Source builds an S3Source from the default AWS credential chain.
func NewS3Source(ctx context.Context, region, bucket, key string) (*S3Source, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("s3 candidate source requires bucket and key")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Source{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Key:    key,
	}, nil
}

func (s *S3Source) Name() string { return "s3" }

func (s *S3Source) Fetch(ctx context.Context) ([]Candidate, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(out.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	if len(raw) > maxDatasetBytes {
		return nil, fmt.Errorf("s3 object exceeds %d bytes", maxDatasetBytes)
	}
	return DecodeDataset(raw)
}
