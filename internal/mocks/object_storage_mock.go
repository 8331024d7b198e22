package mocks

import (
	"context"

	"github.com/benmeehan/apmapper/pkg/s3"
	"github.com/stretchr/testify/mock"
)

// MockObjectStorage is a mock implementation of the ObjectStorageClient interface
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Connect(ctx context.Context, endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	args := m.Called(ctx, endpoint, accessKeyID, secretAccessKey, useSSL)
	return args.Error(0)
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context, bucketName, region string) error {
	args := m.Called(ctx, bucketName, region)
	return args.Error(0)
}

func (m *MockObjectStorage) UploadFile(ctx context.Context, bucketName, objectName, filePath, contentType string) (*s3.UploadResult, error) {
	args := m.Called(ctx, bucketName, objectName, filePath, contentType)
	result, _ := args.Get(0).(*s3.UploadResult)
	return result, args.Error(1)
}
