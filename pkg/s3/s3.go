package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorageClient uploads files to an S3 compatible object store.
type ObjectStorageClient interface {
	Connect(ctx context.Context, endpoint, accessKeyID, secretAccessKey string, useSSL bool) error
	EnsureBucket(ctx context.Context, bucketName, region string) error
	UploadFile(ctx context.Context, bucketName, objectName, filePath, contentType string) (*UploadResult, error)
}

// UploadResult describes an uploaded object.
type UploadResult struct {
	ObjectName   string
	Size         int64
	PresignedURL string
}

// PresignExpiry is how long presigned download URLs stay valid.
const PresignExpiry = 7 * 24 * time.Hour

// ObjectStorage holds the object storage client instance
type ObjectStorage struct {
	Conn *minio.Client
}

// NewObjectStorage initialization
func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{}
}

// Connect establishes the object storage connection using client
func (o *ObjectStorage) Connect(ctx context.Context, endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	var err error
	o.Conn, err = minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	// Check connection by listing buckets
	if _, err := o.Conn.ListBuckets(ctx); err != nil {
		return fmt.Errorf("failed to establish minio connection: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket unless it already exists.
func (o *ObjectStorage) EnsureBucket(ctx context.Context, bucketName, region string) error {
	err := o.Conn.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: region})
	if err == nil {
		return nil
	}

	exists, errBucketExists := o.Conn.BucketExists(ctx, bucketName)
	if errBucketExists == nil && exists {
		return nil
	}
	return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
}

// UploadFile stores the local file under objectName, overwriting an existing object, and
// returns a presigned download URL for it.
func (o *ObjectStorage) UploadFile(ctx context.Context, bucketName, objectName, filePath, contentType string) (*UploadResult, error) {
	info, err := o.Conn.FPutObject(ctx, bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filePath, err)
	}

	result := &UploadResult{ObjectName: objectName, Size: info.Size}
	presignedURL, err := o.Conn.PresignedGetObject(ctx, bucketName, objectName, PresignExpiry, nil)
	if err == nil {
		result.PresignedURL = presignedURL.String()
	}
	return result, nil
}
