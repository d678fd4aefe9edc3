package mocks

import (
	"context"
	"sync"

	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/transport"
)

var _ transport.Resource[models.Project] = (*MockResource[models.Project])(nil)

// MockResource is a mock implementation of transport.Resource for testing
type MockResource[T models.Item] struct {
	KindValue  string
	ListFunc   func(ctx context.Context, scope models.Scope, filters models.Filters) (*models.Page[T], error)
	CreateFunc func(ctx context.Context, scope models.Scope, item T) (T, error)
	UpdateFunc func(ctx context.Context, scope models.Scope, item T) (T, error)
	DeleteFunc func(ctx context.Context, scope models.Scope, id string) error

	mu        sync.Mutex
	listCalls []models.Scope
}

// Kind returns KindValue
func (m *MockResource[T]) Kind() string {
	return m.KindValue
}

// List calls the mock function and records the scope
func (m *MockResource[T]) List(ctx context.Context, scope models.Scope, filters models.Filters) (*models.Page[T], error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, scope)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope, filters)
	}
	return &models.Page[T]{Items: []T{}}, nil
}

// Create calls the mock function
func (m *MockResource[T]) Create(ctx context.Context, scope models.Scope, item T) (T, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, scope, item)
	}
	return item, nil
}

// Update calls the mock function
func (m *MockResource[T]) Update(ctx context.Context, scope models.Scope, item T) (T, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, scope, item)
	}
	return item, nil
}

// Delete calls the mock function
func (m *MockResource[T]) Delete(ctx context.Context, scope models.Scope, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, scope, id)
	}
	return nil
}

// ListCalls returns the scopes List was called with, in order
func (m *MockResource[T]) ListCalls() []models.Scope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Scope(nil), m.listCalls...)
}
