package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

var _ catalogapp.MediaStorage = (*MemoryMediaStorage)(nil)

// MemoryMediaStorage keeps media in process memory. It backs development
// setups without object storage and tests.
type MemoryMediaStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryMediaStorage creates an empty storage serving from baseURL
func NewMemoryMediaStorage(baseURL string) *MemoryMediaStorage {
	return &MemoryMediaStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

// Put stores the body and returns its URL
func (s *MemoryMediaStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return s.BaseURL + "/" + key, nil
}

// Delete drops the object behind url, if any
func (s *MemoryMediaStorage) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok {
		return nil
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored object
func (s *MemoryMediaStorage) Get(key string) (io.Reader, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.NewReader(obj.data), obj.contentType, true
}

// Len returns the number of stored objects
func (s *MemoryMediaStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
