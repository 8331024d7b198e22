package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/benmeehan/apmapper/internal/mocks"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/services"
	"github.com/benmeehan/apmapper/pkg/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var s3Config = services.S3SinkConfig{
	Endpoint:  "localhost:9000",
	AccessKey: "key",
	SecretKey: "secret",
	Bucket:    "captures",
	Prefix:    "apmapper",
}

func TestS3Sink_Write(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Connect", mock.Anything, "localhost:9000", "key", "secret", false).Return(nil)
	storage.On("EnsureBucket", mock.Anything, "captures", "us-east-1").Return(nil)
	storage.On("UploadFile", mock.Anything, "captures", "apmapper/run-1/aps.csv", "out/aps.csv", "text/csv").
		Return(&s3.UploadResult{ObjectName: "apmapper/run-1/aps.csv", Size: 10}, nil)
	storage.On("UploadFile", mock.Anything, "captures", "apmapper/run-1/aps.kml", "out/aps.kml", "application/vnd.google-earth.kml+xml").
		Return(&s3.UploadResult{ObjectName: "apmapper/run-1/aps.kml", Size: 20}, nil)

	report := &models.Report{Summary: &models.RunSummary{RunID: "run-1"}}
	report.AddFile("out/aps.csv")
	report.AddFile("out/aps.kml")

	sink := services.NewS3Sink(storage, s3Config, zerolog.Nop())
	assert.NoError(t, sink.Write(context.Background(), report))
	storage.AssertExpectations(t)
}

func TestS3Sink_NoFiles(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	sink := services.NewS3Sink(storage, s3Config, zerolog.Nop())

	assert.NoError(t, sink.Write(context.Background(), &models.Report{Summary: &models.RunSummary{RunID: "run-1"}}))
	storage.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestS3Sink_UploadFailureContinues(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Connect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	storage.On("EnsureBucket", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	storage.On("UploadFile", mock.Anything, "captures", "apmapper/run-1/a.csv", "a.csv", "text/csv").
		Return(nil, errors.New("access denied"))
	storage.On("UploadFile", mock.Anything, "captures", "apmapper/run-1/b.db", "b.db", "application/vnd.sqlite3").
		Return(&s3.UploadResult{ObjectName: "apmapper/run-1/b.db"}, nil)

	report := &models.Report{Summary: &models.RunSummary{RunID: "run-1"}, Files: []string{"a.csv", "b.db"}}
	err := services.NewS3Sink(storage, s3Config, zerolog.Nop()).Write(context.Background(), report)

	assert.ErrorContains(t, err, "1 of 2")
	storage.AssertNumberOfCalls(t, "UploadFile", 2)
}

func TestObjectNameAndContentType(t *testing.T) {
	assert.Equal(t, "run-1/aps.kml", services.ObjectName("", "run-1", "/tmp/x/aps.kml"))
	assert.Equal(t, "application/octet-stream", services.ContentType("notes.txt"))
}
