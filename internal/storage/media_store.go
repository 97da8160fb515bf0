package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cartside/api/internal/config"
	"cartside/api/internal/ids"
)

// MediaStore is the media-host client: it holds product images under
// per-folder object keys and hands back a public URL per upload.
type MediaStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

type UploadedMedia struct {
	Key string
	URL string
}

func NewMediaStore(cfg config.StorageConfig) (*MediaStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init media store: %w", err)
	}

	return &MediaStore{client: client, cfg: cfg}, nil
}

func (s *MediaStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// Upload stores raw image bytes under folder/<id>.<ext> and returns the
// object key plus its public URL.
func (s *MediaStore) Upload(ctx context.Context, data []byte, folder string, ext string, contentType string) (UploadedMedia, error) {
	key := path.Join(folder, ids.New()+"."+ext)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadedMedia{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return UploadedMedia{Key: key, URL: s.PublicURL(key)}, nil
}

func (s *MediaStore) Destroy(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *MediaStore) PublicURL(key string) string {
	base := strings.TrimSuffix(s.cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket)
	}
	return base + "/" + key
}
