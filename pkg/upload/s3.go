package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client this package uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores profile pictures in an S3 bucket. Requests are signed
// with AWS credentials by the SDK; nothing from the browser session is
// forwarded.
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
	maxSize int64
}

// NewS3Store creates a store writing under prefix in bucket. baseURL is
// the public URL root the bucket is served from (CDN or bucket
// endpoint); the returned object URL is baseURL/key.
func NewS3Store(client S3API, bucket, prefix, baseURL string, maxSize int64) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  strings.TrimSuffix(prefix, "/") + "/",
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
	}
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	key := s.prefix + objectID() + strings.ToLower(path.Ext(filename))

	body := r
	if s.maxSize > 0 {
		body = io.LimitReader(r, s.maxSize+1)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload: put object: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func objectID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("upload: rand.Read: " + err.Error())
	}
	return hex.EncodeToString(b)
}
