package storage

import (
	"context"
	"io"
	"strings"
)

// Storage puts and removes objects.
type Storage interface {
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// KeyOf returns the object key of a URL built by s.PublicURL. It reports false
// for URLs that point anywhere else.
func KeyOf(s Storage, url string) (string, bool) {
	base := s.PublicURL("")
	if base == "" || len(url) <= len(base) || !strings.HasPrefix(url, base) {
		return "", false
	}
	return url[len(base):], true
}

// Config holds the S3 settings. An empty bucket disables uploads.
type Config struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	// PublicURL is a CDN prefix used instead of the bucket URL.
	PublicURL string `env:"S3_PUBLIC_URL"`
	PathStyle bool   `env:"S3_PATH_STYLE"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool { return c.Bucket != "" }

func (c Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// FileInfo describes a stored object.
type FileInfo struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// ACL is the canned access level of an object.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	key         string
	prefix      string
	contentType string
	acl         ACL
}

// WithKey stores the object under key instead of a random one.
func WithKey(key string) Option {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix adds a path segment before the generated file name.
func WithPrefix(prefix string) Option {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithContentType sets the object content type. Default: application/octet-stream.
func WithContentType(ct string) Option {
	return func(o *putOptions) { o.contentType = ct }
}

// WithACL overrides the public-read default.
func WithACL(acl ACL) Option {
	return func(o *putOptions) { o.acl = acl }
}
