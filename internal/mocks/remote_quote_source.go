package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// MockRemoteQuoteSource mocks ports.RemoteQuoteSource.
type MockRemoteQuoteSource struct {
	mock.Mock
}

// NewMockRemoteQuoteSource creates a mock that asserts its expectations on cleanup.
func NewMockRemoteQuoteSource(t TestingT) *MockRemoteQuoteSource {
	m := &MockRemoteQuoteSource{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockRemoteQuoteSource_Expecter records expectations.
type MockRemoteQuoteSource_Expecter struct {
	mock *mock.Mock
}

// EXPECT starts an expectation.
func (m *MockRemoteQuoteSource) EXPECT() *MockRemoteQuoteSource_Expecter {
	return &MockRemoteQuoteSource_Expecter{mock: &m.Mock}
}

// FetchBatch implements ports.RemoteQuoteSource.
func (m *MockRemoteQuoteSource) FetchBatch(ctx context.Context, limit int) ([]ports.RemoteRecord, error) {
	ret := m.Called(ctx, limit)

	if fn, ok := ret.Get(0).(func(context.Context, int) ([]ports.RemoteRecord, error)); ok {
		return fn(ctx, limit)
	}

	var records []ports.RemoteRecord
	if v := ret.Get(0); v != nil {
		records = v.([]ports.RemoteRecord)
	}

	return records, ret.Error(1)
}

// MockRemoteQuoteSource_FetchBatch_Call is a typed FetchBatch expectation.
type MockRemoteQuoteSource_FetchBatch_Call struct {
	*mock.Call
}

// FetchBatch expects a FetchBatch call.
func (e *MockRemoteQuoteSource_Expecter) FetchBatch(ctx, limit any) *MockRemoteQuoteSource_FetchBatch_Call {
	return &MockRemoteQuoteSource_FetchBatch_Call{Call: e.mock.On("FetchBatch", ctx, limit)}
}

// Return sets the values returned by FetchBatch.
func (c *MockRemoteQuoteSource_FetchBatch_Call) Return(records []ports.RemoteRecord, err error) *MockRemoteQuoteSource_FetchBatch_Call {
	c.Call.Return(records, err)

	return c
}

// RunAndReturn computes the returned values from the arguments.
func (c *MockRemoteQuoteSource_FetchBatch_Call) RunAndReturn(fn func(context.Context, int) ([]ports.RemoteRecord, error)) *MockRemoteQuoteSource_FetchBatch_Call {
	c.Call.Return(fn, nil)

	return c
}

// PostRecord implements ports.RemoteQuoteSource.
func (m *MockRemoteQuoteSource) PostRecord(ctx context.Context, record ports.RemoteRecord) error {
	ret := m.Called(ctx, record)

	if fn, ok := ret.Get(0).(func(context.Context, ports.RemoteRecord) error); ok {
		return fn(ctx, record)
	}

	return ret.Error(0)
}

// MockRemoteQuoteSource_PostRecord_Call is a typed PostRecord expectation.
type MockRemoteQuoteSource_PostRecord_Call struct {
	*mock.Call
}

// PostRecord expects a PostRecord call.
func (e *MockRemoteQuoteSource_Expecter) PostRecord(ctx, record any) *MockRemoteQuoteSource_PostRecord_Call {
	return &MockRemoteQuoteSource_PostRecord_Call{Call: e.mock.On("PostRecord", ctx, record)}
}

// Return sets the error returned by PostRecord.
func (c *MockRemoteQuoteSource_PostRecord_Call) Return(err error) *MockRemoteQuoteSource_PostRecord_Call {
	c.Call.Return(err)

	return c
}

// RunAndReturn computes the returned error from the arguments.
func (c *MockRemoteQuoteSource_PostRecord_Call) RunAndReturn(fn func(context.Context, ports.RemoteRecord) error) *MockRemoteQuoteSource_PostRecord_Call {
	c.Call.Return(fn)

	return c
}
