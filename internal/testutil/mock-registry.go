package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRegistryClient is a mock of ports.RegistryClient.
type MockRegistryClient struct {
	mock.Mock
}

func (m *MockRegistryClient) FetchVersions(ctx context.Context, packageName, registryURL string) ([]string, error) {
	args := m.Called(ctx, packageName, registryURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPrivilegeDropper is a mock of services.PrivilegeDropper.
type MockPrivilegeDropper struct {
	mock.Mock
}

func (m *MockPrivilegeDropper) Drop() error {
	args := m.Called()
	return args.Error(0)
}
