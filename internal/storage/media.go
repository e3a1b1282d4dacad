package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pawmart/internal/models"
)

// MediaStore keeps uploaded photos in an object storage bucket and
// hands back (publicId, url) pairs for persisting on documents.
type MediaStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	BaseURL   string
}

func NewMediaStore(opts Options) (*MediaStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	return &MediaStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (m *MediaStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("bucket check failed: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("bucket create failed: %w", err)
	}
	return nil
}

// Upload stores a single file under folder/<uuid><ext> and returns the
// image reference to persist on the owning document.
func (m *MediaStore) Upload(ctx context.Context, folder, fileName string, file io.Reader, size int64) (models.Image, error) {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	contentType := mime.TypeByExtension(fileExt)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), fileExt)

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"uploaded-at":       time.Now().Format(time.RFC3339),
			},
		})
	if err != nil {
		return models.Image{}, fmt.Errorf("media upload failed: %w", err)
	}

	return models.Image{
		PublicID: objectName,
		URL:      m.baseURL + "/" + objectName,
	}, nil
}

// Delete removes a stored object by its public id. Missing objects are
// not an error.
func (m *MediaStore) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return nil
	}
	err := m.client.RemoveObject(ctx, m.bucket, publicID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("media delete failed: %w", err)
	}
	return nil
}
