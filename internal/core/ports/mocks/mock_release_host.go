package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/attrition-game/atk/internal/core/domain"
)

// UploadCall captures one UploadAsset invocation
type UploadCall struct {
	Token       string
	URL         string
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}

// MockReleaseHost is an in-memory ReleaseHost that records every call
type MockReleaseHost struct {
	mu sync.Mutex

	Release *domain.Release
	Asset   *domain.Asset

	createErr error
	uploadErr error

	createCalls []domain.ReleaseDraft
	uploadCalls []UploadCall
}

// NewMockReleaseHost returns a host that answers with a release whose upload
// URL carries a URI template suffix
func NewMockReleaseHost() *MockReleaseHost {
	return &MockReleaseHost{
		Release: &domain.Release{
			ID:        42,
			HTMLURL:   "https://github.com/owner/repo/releases/tag/v1.0.0",
			UploadURL: "https://uploads.github.com/repos/owner/repo/releases/42/assets{?name,label}",
		},
	}
}

func (m *MockReleaseHost) CreateRelease(ctx context.Context, token string, draft domain.ReleaseDraft) (*domain.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = append(m.createCalls, draft)
	if m.createErr != nil {
		return nil, m.createErr
	}
	rel := *m.Release
	rel.TagName = draft.TagName
	return &rel, nil
}

func (m *MockReleaseHost) UploadAsset(ctx context.Context, token string, uploadURL string, upload domain.AssetUpload) (*domain.Asset, error) {
	var content []byte
	if upload.Content != nil {
		b, err := io.ReadAll(upload.Content)
		if err != nil {
			return nil, fmt.Errorf("mock read failed: %w", err)
		}
		content = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls = append(m.uploadCalls, UploadCall{
		Token:       token,
		URL:         uploadURL,
		Name:        upload.Name,
		Size:        upload.Size,
		ContentType: upload.ContentType,
		Content:     content,
	})
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if m.Asset != nil {
		a := *m.Asset
		return &a, nil
	}
	return &domain.Asset{
		ID:                 7,
		Name:               upload.Name,
		Size:               int64(len(content)),
		BrowserDownloadURL: "https://github.com/owner/repo/releases/download/v1.0.0/" + upload.Name,
	}, nil
}

func (m *MockReleaseHost) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

func (m *MockReleaseHost) SetUploadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErr = err
}

func (m *MockReleaseHost) GetCreateCalls() []domain.ReleaseDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]domain.ReleaseDraft, len(m.createCalls))
	copy(calls, m.createCalls)
	return calls
}

func (m *MockReleaseHost) GetUploadCalls() []UploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]UploadCall, len(m.uploadCalls))
	copy(calls, m.uploadCalls)
	return calls
}

// TotalCalls counts every remote call made so far
func (m *MockReleaseHost) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createCalls) + len(m.uploadCalls)
}

func (m *MockReleaseHost) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = nil
	m.uploadCalls = nil
	m.createErr = nil
	m.uploadErr = nil
}
