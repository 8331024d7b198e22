package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a mock implementation of the CommandRunner interface
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) LookPath(file string) (string, error) {
	args := m.Called(file)
	return args.String(0), args.Error(1)
}

func (m *MockCommandRunner) Output(ctx context.Context, name string, arguments ...string) ([]byte, []byte, error) {
	args := m.Called(ctx, name, arguments)
	stdout, _ := args.Get(0).([]byte)
	stderr, _ := args.Get(1).([]byte)
	return stdout, stderr, args.Error(2)
}
