// Package mocks provides test doubles for the page fetcher.
package mocks

import (
	"context"

	fetcher "github.com/sells-group/storefront-insights/internal/fetcher"
	mock "github.com/stretchr/testify/mock"
)

// MockFetcher is a mock type for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

// Fetch provides a mock function with given fields: ctx, url
func (_m *MockFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	ret := _m.Called(ctx, url)

	if len(ret) == 0 {
		panic("no return value specified for Fetch")
	}

	var r0 *fetcher.Page
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*fetcher.Page, error)); ok {
		return rf(ctx, url)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *fetcher.Page); ok {
		r0 = rf(ctx, url)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*fetcher.Page)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, url)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FetchJSON provides a mock function with given fields: ctx, url, v
func (_m *MockFetcher) FetchJSON(ctx context.Context, url string, v any) error {
	ret := _m.Called(ctx, url, v)

	if len(ret) == 0 {
		panic("no return value specified for FetchJSON")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, any) error); ok {
		r0 = rf(ctx, url, v)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockFetcher creates a new instance of MockFetcher.
func NewMockFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFetcher {
	mock := &MockFetcher{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
