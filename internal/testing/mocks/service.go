package mocks

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/greghernandez/docsync/internal/types"
)

// MockService is a test double for api.Service. Each method delegates to the
// corresponding func field when set, falling back to a benign default. Call
// counts are recorded for every method.
type MockService struct {
	mu sync.Mutex

	LoginFunc         func(username, password string) (string, error)
	ListChildrenFunc  func(folderURI string) ([]types.Entry, error)
	SearchByTitleFunc func(title string, exact bool) ([]types.Entry, error)
	ExportFunc        func(entry types.Entry, localPath string) error
	UpdateFunc        func(resourceID string, content []byte) (*types.Version, error)

	LoginCalls         int
	ListChildrenCalls  int
	SearchByTitleCalls int
	ExportCalls        int
	UpdateCalls        int

	Token string
}

// NewMockService creates a mock with default behaviors.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Login(ctx context.Context, username, password string) (string, error) {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(username, password)
	}
	return "mock-token", nil
}

func (m *MockService) SetToken(token string) {
	m.mu.Lock()
	m.Token = token
	m.mu.Unlock()
}

func (m *MockService) ListChildren(ctx context.Context, folderURI string) ([]types.Entry, error) {
	m.mu.Lock()
	m.ListChildrenCalls++
	m.mu.Unlock()
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(folderURI)
	}
	return nil, nil
}

func (m *MockService) SearchByTitle(ctx context.Context, title string, exact bool) ([]types.Entry, error) {
	m.mu.Lock()
	m.SearchByTitleCalls++
	m.mu.Unlock()
	if m.SearchByTitleFunc != nil {
		return m.SearchByTitleFunc(title, exact)
	}
	return nil, nil
}

func (m *MockService) Export(ctx context.Context, entry types.Entry, localPath string) error {
	m.mu.Lock()
	m.ExportCalls++
	m.mu.Unlock()
	if m.ExportFunc != nil {
		return m.ExportFunc(entry, localPath)
	}
	return os.WriteFile(localPath, []byte("mock content for "+entry.Title), 0644)
}

func (m *MockService) Update(ctx context.Context, resourceID string, content io.Reader) (*types.Version, error) {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if m.UpdateFunc != nil {
		return m.UpdateFunc(resourceID, data)
	}
	return &types.Version{
		ResourceID: resourceID,
		ChangeTag:  "mock-tag",
		Link:       "https://docs.example.com/" + resourceID,
	}, nil
}
