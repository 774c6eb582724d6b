package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/models"
)

type MinIOStore struct {
	client       *minio.Client
	bucket       string
	fetchTimeout time.Duration
	refs         refResolver
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStore{
		client:       client,
		bucket:       cfg.Bucket,
		fetchTimeout: cfg.FetchTimeout,
		refs:         newRefResolver(cfg),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// PutObject uploads data under the given key.
func (s *MinIOStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Fetch returns the bytes behind a stored reference: an s3:// URI, an object URL
// or a bare object key. A missing object wraps models.ErrNotFound.
func (s *MinIOStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key, err := s.refs.objectKey(ref)
	if err != nil {
		return nil, err
	}

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	return readObject(key, obj)
}

// readObject returns the object bytes as stored. An empty object is not an error
// here; the caller's decoder decides whether the payload is usable.
func readObject(key string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// DeleteObject removes an object.
func (s *MinIOStore) DeleteObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// URL is the address handed out to clients for an object key.
func (s *MinIOStore) URL(key string) string {
	return s.refs.url(key)
}

// Ping checks MinIO connectivity.
func (s *MinIOStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// refResolver maps stored image references onto object keys of one bucket.
type refResolver struct {
	bucket    string
	endpoint  string
	scheme    string
	publicURL string
}

func newRefResolver(cfg config.MinIOConfig) refResolver {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return refResolver{
		bucket:    cfg.Bucket,
		endpoint:  cfg.Endpoint,
		scheme:    scheme,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}
}

var errEmptyRef = errors.New("empty image reference")

func (r refResolver) objectKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errEmptyRef
	}

	if r.publicURL != "" && strings.HasPrefix(ref, r.publicURL+"/") {
		return nonEmptyKey(ref, strings.TrimPrefix(ref, r.publicURL+"/"))
	}

	if !strings.Contains(ref, "://") {
		return nonEmptyKey(ref, strings.TrimPrefix(ref, "/"))
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image reference %q: %w", ref, err)
	}

	switch u.Scheme {
	case "s3":
		if u.Host != r.bucket {
			return "", fmt.Errorf("image reference %q is in bucket %q, expected %q", ref, u.Host, r.bucket)
		}
		return nonEmptyKey(ref, strings.TrimPrefix(u.Path, "/"))
	case "http", "https":
		if strings.HasPrefix(u.Host, r.bucket+".") {
			return nonEmptyKey(ref, strings.TrimPrefix(u.Path, "/"))
		}
		if u.Host == r.endpoint {
			bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
			if bucket != r.bucket {
				return "", fmt.Errorf("image reference %q is in bucket %q, expected %q", ref, bucket, r.bucket)
			}
			return nonEmptyKey(ref, key)
		}
		return "", fmt.Errorf("image reference %q points at unknown host %q", ref, u.Host)
	default:
		return "", fmt.Errorf("image reference %q has unsupported scheme %q", ref, u.Scheme)
	}
}

func (r refResolver) url(key string) string {
	if r.publicURL != "" {
		return r.publicURL + "/" + key
	}
	return r.scheme + "://" + r.endpoint + "/" + r.bucket + "/" + key
}

func nonEmptyKey(ref, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("image reference %q has no object key", ref)
	}
	return key, nil
}
