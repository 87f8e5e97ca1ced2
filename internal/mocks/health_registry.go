package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// MockHealthRegistry mocks ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

// NewMockHealthRegistry creates a mock that asserts its expectations on cleanup.
func NewMockHealthRegistry(t TestingT) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockHealthRegistry_Expecter records expectations.
type MockHealthRegistry_Expecter struct {
	mock *mock.Mock
}

// EXPECT starts an expectation.
func (m *MockHealthRegistry) EXPECT() *MockHealthRegistry_Expecter {
	return &MockHealthRegistry_Expecter{mock: &m.Mock}
}

// Register implements ports.HealthRegistry.
func (m *MockHealthRegistry) Register(checker ports.HealthChecker, critical bool) error {
	return m.Called(checker, critical).Error(0)
}

// Register expects a Register call.
func (e *MockHealthRegistry_Expecter) Register(checker, critical any) *mock.Call {
	return e.mock.On("Register", checker, critical)
}

// CheckAll implements ports.HealthRegistry.
func (m *MockHealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	ret := m.Called(ctx)

	if v := ret.Get(0); v != nil {
		return v.(*ports.HealthResult)
	}

	return nil
}

// MockHealthRegistry_CheckAll_Call is a typed CheckAll expectation.
type MockHealthRegistry_CheckAll_Call struct {
	*mock.Call
}

// CheckAll expects a CheckAll call.
func (e *MockHealthRegistry_Expecter) CheckAll(ctx any) *MockHealthRegistry_CheckAll_Call {
	return &MockHealthRegistry_CheckAll_Call{Call: e.mock.On("CheckAll", ctx)}
}

// Return sets the result returned by CheckAll.
func (c *MockHealthRegistry_CheckAll_Call) Return(result *ports.HealthResult) *MockHealthRegistry_CheckAll_Call {
	c.Call.Return(result)

	return c
}
