package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps uploaded assets in a map. It backs tests and the mock
// generation path, where nothing needs to survive a restart.
type MemoryStore struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	publicBaseURL string
}

// NewMemoryStore returns an empty in-memory store serving URLs under
// publicBaseURL.
func NewMemoryStore(publicBaseURL string) *MemoryStore {
	return &MemoryStore{
		objects:       make(map[string][]byte),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *MemoryStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[cleanKey] = buf
	s.mu.Unlock()

	return s.publicBaseURL + "/" + cleanKey, nil
}

func (s *MemoryStore) Download(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

var (
	_ Storage = (*FileStore)(nil)
	_ Storage = (*MemoryStore)(nil)
)
