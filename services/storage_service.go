package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// StorageConfig holds Google Cloud Storage configuration.
type StorageConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// StorageService uploads notification images to a GCS bucket and hands
// back their public URLs.
type StorageService struct {
	client *storage.Client
	bucket string
}

func NewStorageService(ctx context.Context, config *StorageConfig) (*StorageService, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	return &StorageService{client: client, bucket: config.Bucket}, nil
}

// Upload writes the content into the bucket, makes the object publicly
// readable and returns its URL. The object key is the original filename
// prefixed with a nanosecond timestamp so repeated uploads of the same
// file never collide.
func (ss *StorageService) Upload(ctx context.Context, content []byte, filename, mimeType string) (string, error) {
	key := fmt.Sprintf("notifications/%d-%s", time.Now().UnixNano(), sanitizeFilename(filename))
	obj := ss.client.Bucket(ss.bucket).Object(key)

	w := obj.NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", NewUpstreamError(err, 0, "", "write object to bucket")
	}
	if err := w.Close(); err != nil {
		return "", NewUpstreamError(err, 0, "", "finish object upload")
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", NewUpstreamError(err, 0, "", "make object public")
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", ss.bucket, key), nil
}

// Close releases the underlying client.
func (ss *StorageService) Close() error {
	return ss.client.Close()
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
