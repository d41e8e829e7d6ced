// Package storage uploads listing images and returns the {url, filename}
// pair the listing keeps.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/baharkarakas/roamr-backend/internal/models"
)

const objectPrefix = "listings"

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL replaces the endpoint in returned URLs when the bucket is
	// served through a CDN or proxy.
	PublicURL string
}

type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *slog.Logger
}

func NewImageStore(ctx context.Context, opts Options, log *slog.Logger) (*ImageStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client %s: %w", opts.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket %s: %w", opts.Bucket, err)
		}
		log.Info("image bucket created", "bucket", opts.Bucket)
	}

	base := opts.PublicURL
	if base == "" {
		base = client.EndpointURL().String()
	}
	return &ImageStore{client: client, bucket: opts.Bucket, baseURL: base, log: log}, nil
}

// Upload stores the file under a fresh key. Unsupported extensions are a
// validation failure on the image field.
func (s *ImageStore) Upload(ctx context.Context, name string, r io.Reader, size int64) (models.Image, error) {
	key, contentType, err := objectKey(name)
	if err != nil {
		return models.Image{}, err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(name)},
	})
	if err != nil {
		return models.Image{}, models.StoreErr("images.upload", err)
	}
	s.log.Info("image uploaded", "bucket", info.Bucket, "key", info.Key, "size", info.Size)
	return models.Image{URL: objectURL(s.baseURL, s.bucket, key), Filename: key}, nil
}

// Remove deletes a previously uploaded object. The placeholder is never stored.
func (s *ImageStore) Remove(ctx context.Context, img models.Image) error {
	if img.Filename == "" || img.Filename == models.DefaultImageFilename {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, img.Filename, minio.RemoveObjectOptions{}); err != nil {
		return models.StoreErr("images.remove", err)
	}
	return nil
}

func objectKey(name string) (key, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(name))
	ct, ok := allowedExt[ext]
	if !ok {
		return "", "", models.NewValidationError("listing", "image", "unsupported image type "+`"`+ext+`"`)
	}
	return path.Join(objectPrefix, uuid.NewString()+ext), ct, nil
}

func objectURL(base, bucket, key string) string {
	u, err := url.JoinPath(base, bucket, key)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
	}
	return u
}
