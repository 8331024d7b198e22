package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockFileOperations is a mock implementation of the FileOperations interface
type MockFileOperations struct {
	mock.Mock
}

func (m *MockFileOperations) IsFileExists(filePath string) (bool, error) {
	args := m.Called(filePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileOperations) ListFiles(dir string, extension string) ([]string, error) {
	args := m.Called(dir, extension)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

func (m *MockFileOperations) Open(filePath string) (io.ReadCloser, error) {
	args := m.Called(filePath)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockFileOperations) ReadFileRaw(filePath string) ([]byte, error) {
	args := m.Called(filePath)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFileOperations) ReadYamlFile(filePath string, v any) error {
	args := m.Called(filePath, v)
	return args.Error(0)
}

func (m *MockFileOperations) WriteFileAtomic(filePath string, write func(w io.Writer) error) error {
	args := m.Called(filePath, write)
	return args.Error(0)
}
