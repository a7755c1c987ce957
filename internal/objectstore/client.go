package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"points-mall/config"
	"points-mall/internal/util"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MaxImageSize is the upload size ceiling in bytes
const MaxImageSize = 5 << 20

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ValidateImage rejects uploads that are not an allowed image type or
// exceed the size ceiling
func ValidateImage(contentType string, size int64) error {
	if _, ok := extByContentType[contentType]; !ok {
		return fmt.Errorf("unsupported image type: %s", contentType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("image exceeds %d bytes", int64(MaxImageSize))
	}
	return nil
}

// Client wraps the S3-compatible bucket that holds product images
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewClient creates an object store client from config
func NewClient(cfg *config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Client{
		mc:        mc,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		logger:    util.GetLogger(),
	}, nil
}

// PutImage validates and stores an image, returning its public URL. Keys
// carry a timestamp and a random suffix so concurrent uploads never collide.
func (c *Client) PutImage(ctx context.Context, data []byte, contentType string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ObjectStore.PutImage")
	defer span.End()

	if err := ValidateImage(contentType, int64(len(data))); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%d-%s.%s",
		time.Now().UnixMilli(),
		uuid.New().String()[:8],
		extByContentType[contentType])

	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	util.ImagesUploadedTotal.Inc()
	c.logger.Info("Image uploaded",
		zap.String("key", key),
		zap.Int("size", len(data)))

	return c.publicURL + "/" + key, nil
}

// DeleteImage removes the object behind a public URL. URLs outside our
// bucket's public prefix are ignored.
func (c *Client) DeleteImage(ctx context.Context, imageURL string) error {
	if !strings.HasPrefix(imageURL, c.publicURL+"/") {
		return nil
	}

	u, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil
	}

	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	c.logger.Info("Image deleted", zap.String("key", key))
	return nil
}
