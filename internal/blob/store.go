// Package blob talks to the S3 compatible store holding document files.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

var ErrNotConfigured = errors.New("blob storage credentials are not configured")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	UseSSL    bool
}

// Missing names the first required setting that is empty.
func (c Config) Missing() string {
	switch {
	case c.Endpoint == "":
		return "BLOB_ENDPOINT"
	case c.AccessKey == "":
		return "BLOB_ACCESS_KEY"
	case c.SecretKey == "":
		return "BLOB_SECRET_KEY"
	case c.Bucket == "":
		return "BLOB_BUCKET"
	}
	return ""
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store wraps a minio client. A Store built without credentials is valid but
// every operation returns ErrNotConfigured.
type Store struct {
	client *minio.Client
	cfg    Config
}

func New(cfg Config) (*Store, error) {
	if cfg.Missing() != "" {
		log.Warn().Str("missing", cfg.Missing()).Msg("blob storage disabled")
		return &Store{cfg: cfg}, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Store{client: client, cfg: cfg}, nil
}

func (s *Store) Configured() bool {
	return s != nil && s.client != nil
}

// Missing names the setting that keeps the store unconfigured.
func (s *Store) Missing() string {
	if s == nil {
		return "BLOB_ENDPOINT"
	}
	return s.cfg.Missing()
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
}

// PresignPut returns a URL the client can PUT the object to directly.
func (s *Store) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	u, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, key, ttl)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error) {
	if !s.Configured() {
		return ObjectInfo{}, ErrNotConfigured
	}
	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: info.Key, Size: info.Size, ContentType: contentType}, nil
}

func (s *Store) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if !s.Configured() {
		return ObjectInfo{}, ErrNotConfigured
	}
	info, err := s.client.StatObject(ctx, s.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: info.Key, Size: info.Size, ContentType: info.ContentType}, nil
}

// ObjectURL is the address stored on a document version.
func (s *Store) ObjectURL(key string) string {
	return ObjectURL(s.cfg, key)
}

func ObjectURL(cfg Config, key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if cfg.PublicURL != "" {
		return cfg.PublicURL + "/" + strings.TrimPrefix(escaped, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.Endpoint, cfg.Bucket, strings.TrimPrefix(escaped, "/"))
}

// Ping reports whether the bucket is reachable; used by diagnostics.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	_, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	return err
}
