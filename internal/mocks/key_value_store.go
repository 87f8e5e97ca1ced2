package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockKeyValueStore mocks ports.KeyValueStore.
type MockKeyValueStore struct {
	mock.Mock
}

// NewMockKeyValueStore creates a mock that asserts its expectations on cleanup.
func NewMockKeyValueStore(t TestingT) *MockKeyValueStore {
	m := &MockKeyValueStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockKeyValueStore_Expecter records expectations.
type MockKeyValueStore_Expecter struct {
	mock *mock.Mock
}

// EXPECT starts an expectation.
func (m *MockKeyValueStore) EXPECT() *MockKeyValueStore_Expecter {
	return &MockKeyValueStore_Expecter{mock: &m.Mock}
}

// Get implements ports.KeyValueStore.
func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ret := m.Called(ctx, key)

	if fn, ok := ret.Get(0).(func(context.Context, string) ([]byte, bool, error)); ok {
		return fn(ctx, key)
	}

	var value []byte
	if v := ret.Get(0); v != nil {
		value = v.([]byte)
	}

	return value, ret.Bool(1), ret.Error(2)
}

// MockKeyValueStore_Get_Call is a typed Get expectation.
type MockKeyValueStore_Get_Call struct {
	*mock.Call
}

// Get expects a Get call.
func (e *MockKeyValueStore_Expecter) Get(ctx, key any) *MockKeyValueStore_Get_Call {
	return &MockKeyValueStore_Get_Call{Call: e.mock.On("Get", ctx, key)}
}

// Return sets the values returned by Get.
func (c *MockKeyValueStore_Get_Call) Return(value []byte, found bool, err error) *MockKeyValueStore_Get_Call {
	c.Call.Return(value, found, err)

	return c
}

// RunAndReturn computes the returned values from the arguments.
func (c *MockKeyValueStore_Get_Call) RunAndReturn(fn func(context.Context, string) ([]byte, bool, error)) *MockKeyValueStore_Get_Call {
	c.Call.Return(fn, false, nil)

	return c
}

// Set implements ports.KeyValueStore.
func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	ret := m.Called(ctx, key, value)

	if fn, ok := ret.Get(0).(func(context.Context, string, []byte) error); ok {
		return fn(ctx, key, value)
	}

	return ret.Error(0)
}

// MockKeyValueStore_Set_Call is a typed Set expectation.
type MockKeyValueStore_Set_Call struct {
	*mock.Call
}

// Set expects a Set call.
func (e *MockKeyValueStore_Expecter) Set(ctx, key, value any) *MockKeyValueStore_Set_Call {
	return &MockKeyValueStore_Set_Call{Call: e.mock.On("Set", ctx, key, value)}
}

// Return sets the error returned by Set.
func (c *MockKeyValueStore_Set_Call) Return(err error) *MockKeyValueStore_Set_Call {
	c.Call.Return(err)

	return c
}

// RunAndReturn computes the returned error from the arguments.
func (c *MockKeyValueStore_Set_Call) RunAndReturn(fn func(context.Context, string, []byte) error) *MockKeyValueStore_Set_Call {
	c.Call.Return(fn)

	return c
}
