package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 implements Storage on an S3-compatible service.
type S3 struct {
	api objectAPI
	cfg Config
}

// New returns an S3 storage. It does not contact the service.
func New(cfg Config) (*S3, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})
	return &S3{api: client, cfg: cfg}, nil
}

// Put uploads r and returns its key and public URL.
func (s *S3) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := putOptions{contentType: "application/octet-stream", acl: ACLPublicRead}
	for _, opt := range opts {
		opt(&o)
	}

	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read input: %w", ErrUploadFailed, err)
		}
		body = bytes.NewReader(data)
	}

	key := o.key
	if key == "" {
		key = buildKey(o.prefix, o.contentType)
	}

	acl := types.ObjectCannedACLPrivate
	if o.acl == ACLPublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(o.contentType),
		ACL:           acl,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:         key,
		ContentType: o.contentType,
		Size:        size,
		URL:         s.PublicURL(key),
	}, nil
}

// Delete removes the object under key.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// PublicURL returns the unsigned URL of key.
func (s *S3) PublicURL(key string) string {
	switch {
	case s.cfg.PublicURL != "":
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	case s.cfg.Endpoint != "" && s.cfg.PathStyle:
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	case s.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}

func buildKey(prefix, contentType string) string {
	name := uuid.NewString() + extension(contentType)
	if prefix = sanitizeSegment(prefix); prefix != "" {
		return prefix + "/" + name
	}
	return name
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeSegment(s string) string {
	s = strings.Trim(s, " /\\")
	s = strings.ReplaceAll(s, "..", "")
	return url.PathEscape(unsafeSegment.ReplaceAllString(s, "_"))
}

var _ Storage = (*S3)(nil)
