// Package mocks provides test doubles for the review store.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/sells-group/review-intel/internal/model"
)

// MockStore is a mock type for the store.Store interface.
type MockStore struct {
	mock.Mock
}

// InsertReview provides a mock function with given fields: ctx, competitorID, rec
func (_m *MockStore) InsertReview(ctx context.Context, competitorID string, rec model.ReviewRecord) error {
	ret := _m.Called(ctx, competitorID, rec)

	if len(ret) == 0 {
		panic("no return value specified for InsertReview")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, model.ReviewRecord) error); ok {
		r0 = rf(ctx, competitorID, rec)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListReviews provides a mock function with given fields: ctx, competitorID
func (_m *MockStore) ListReviews(ctx context.Context, competitorID string) ([]model.ReviewRecord, error) {
	ret := _m.Called(ctx, competitorID)

	if len(ret) == 0 {
		panic("no return value specified for ListReviews")
	}

	var r0 []model.ReviewRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]model.ReviewRecord, error)); ok {
		return rf(ctx, competitorID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ReviewRecord)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// CountReviews provides a mock function with given fields: ctx, competitorID
func (_m *MockStore) CountReviews(ctx context.Context, competitorID string) (int, error) {
	ret := _m.Called(ctx, competitorID)

	if len(ret) == 0 {
		panic("no return value specified for CountReviews")
	}

	return ret.Int(0), ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// cleanup function to assert the mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
