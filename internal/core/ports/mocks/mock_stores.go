package mocks

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/attrition-game/atk/internal/core/domain"
)

// --- MockImageStore ---

// MockImageStore keeps saved images in memory
type MockImageStore struct {
	mu         sync.Mutex
	images     map[string]image.Image
	order      []string
	shouldFail bool
	failError  error
}

func NewMockImageStore() *MockImageStore {
	return &MockImageStore{
		images: make(map[string]image.Image),
	}
}

func (m *MockImageStore) Save(ctx context.Context, name string, img image.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		if m.failError != nil {
			return "", m.failError
		}
		return "", fmt.Errorf("save failed for %s", name)
	}
	if _, ok := m.images[name]; !ok {
		m.order = append(m.order, name)
	}
	m.images[name] = img
	return "/fake/out/" + name, nil
}

func (m *MockImageStore) Load(ctx context.Context, name string) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[name]
	if !ok {
		return nil, fmt.Errorf("image not found: %s", name)
	}
	return img, nil
}

// Put stores an image directly, bypassing failure injection
func (m *MockImageStore) Put(name string, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[name]; !ok {
		m.order = append(m.order, name)
	}
	m.images[name] = img
}

func (m *MockImageStore) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

// Names returns saved image names in first-save order
func (m *MockImageStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// --- MockPublishLog ---

type MockPublishLog struct {
	mu         sync.Mutex
	records    []domain.PublishRecord
	shouldFail bool
}

func NewMockPublishLog() *MockPublishLog {
	return &MockPublishLog{}
}

func (m *MockPublishLog) Append(ctx context.Context, record domain.PublishRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return fmt.Errorf("publish log unavailable")
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockPublishLog) List(ctx context.Context) ([]domain.PublishRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]domain.PublishRecord, len(m.records))
	copy(records, m.records)
	return records, nil
}

func (m *MockPublishLog) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
}
