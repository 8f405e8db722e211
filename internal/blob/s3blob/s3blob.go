// Package s3blob implements blob.Store on top of Amazon S3 (and
// S3-compatible object stores via a custom endpoint).
//
// The storage account maps onto the access key id and the access key onto
// the secret key, so the same secret-scope pair drives every backend.
package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"kddprep/internal/blob"
)

func init() {
	blob.Register("s3", func(ctx context.Context, cfg blob.Config) (blob.Store, error) {
		return New(cfg)
	})
}

// Store is an S3-backed blob.Store bound to a single bucket.
type Store struct {
	bucket   string
	client   *s3.S3
	uploader *s3manager.Uploader
}

// New opens the bucket named by cfg.Container using static credentials.
func New(cfg blob.Config) (*Store, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("s3blob: container must not be empty")
	}

	awsCfg := &aws.Config{
		Credentials: credentials.NewStaticCredentials(cfg.Account, cfg.Key, ""),
	}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		// Path-style addressing is what S3-compatible local stacks expect.
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3blob: session: %w", err)
	}

	return &Store{
		bucket:   cfg.Container,
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// List implements blob.Store by paging through ListObjectsV2.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	err := s.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				keys = append(keys, aws.StringValue(obj.Key))
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("s3blob: list %s/%s: %w", s.bucket, prefix, err)
	}
	return keys, nil
}

// Download implements blob.Store.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("s3blob: get %s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// Upload implements blob.Store using the multipart-capable uploader, which
// accepts a plain io.Reader and streams large shard files without buffering
// them whole.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("s3blob: put %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Delete implements blob.Store. S3 treats deleting a missing key as success,
// which matches the Store contract.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3blob: delete %s/%s: %w", s.bucket, key, err)
	}
	return nil
}
