package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
)

// GetObjectAPI is the part of *s3.Client the S3 source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads the user list from an object in a bucket.
type S3 struct {
	api    GetObjectAPI
	bucket string
	key    string
	log    *zap.Logger
}

// NewS3 creates an S3 source.
func NewS3(api GetObjectAPI, bucket, key string, log *zap.Logger) *S3 {
	return &S3{api: api, bucket: bucket, key: key, log: log}
}

// Name implements registry.Source.
func (s *S3) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch implements registry.Source.
func (s *S3) Fetch(ctx context.Context) ([]domain.User, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	defer out.Body.Close()

	users, err := DecodeUsers(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	s.log.Debug("read user list from s3",
		zap.String("bucket", s.bucket),
		zap.String("key", s.key),
		zap.Int("count", len(users)),
	)
	return users, nil
}
