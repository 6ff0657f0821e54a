package storage

import (
	"context"
	"mime"
	"path"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps blobs in process memory for development without object storage.
// The returned URLs only resolve when the router serves Memory under baseURL.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	baseURL string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{objects: map[string]memoryObject{}, baseURL: baseURL}
}

func (m *Memory) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return m.baseURL + "/" + key, nil
}

// Get returns the blob under key and its content type. Blobs stored without
// a content type fall back to the one implied by the key's extension.
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	ct := obj.contentType
	if ct == "" {
		ct = mime.TypeByExtension(path.Ext(key))
	}
	return obj.data, ct, true
}
