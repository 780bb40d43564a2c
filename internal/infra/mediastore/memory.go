package mediastore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/agriconnect/agriconnect/internal/domain/media"

	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// MemoryStorage keeps objects in process memory. Used when no object
// store is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data     []byte
	mimeType string
}

// NewMemoryStorage constructs the in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (media.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = memoryObject{data: buf, mimeType: mimeType}
	return media.StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

func (s *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, apperrors.Wrap("not_found", "object not found", nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

var _ media.ObjectStorage = (*MemoryStorage)(nil)
