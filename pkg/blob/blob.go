package blob

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidBlob is never retried.
var ErrInvalidBlob = errors.New("invalid blob")

//go:generate mockgen -source=blob.go -destination=mocks/blob_mock.go -package=mocks

// Uploader stores data under container/name, overwriting any previous content.
type Uploader interface {
	Upload(ctx context.Context, container, name string, data []byte) error
}

func validate(container, name string, data []byte) error {
	switch {
	case container == "":
		return fmt.Errorf("%w: container is required", ErrInvalidBlob)
	case name == "":
		return fmt.Errorf("%w: blob name is required", ErrInvalidBlob)
	case len(data) == 0:
		return fmt.Errorf("%w: blob %s/%s is empty", ErrInvalidBlob, container, name)
	}
	return nil
}

// MemoryStore keeps blobs in process. Used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, container, name string, data []byte) error {
	if err := validate(container, name, data); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[container+"/"+name] = cp
	return nil
}

func (m *MemoryStore) Get(container, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[container+"/"+name]
	return data, ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
