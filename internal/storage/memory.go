package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryClient keeps objects in process memory. It backs local development
// without a bucket and the handler tests.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time

	// Fail* make the matching operation return the error when set
	FailUpload  error
	FailDelete  error
	FailPresign error
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemoryClient creates an empty MemoryClient
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// UploadFile stores the content of r under key, replacing any previous object.
// It returns FailUpload when set.
func (m *MemoryClient) UploadFile(_ context.Context, key string, r io.Reader, contentType string) error {
	if m.FailUpload != nil {
		return m.FailUpload
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType, modified: m.now()}
	return nil
}

// DeleteFile removes key. Deleting a missing key is not an error.
// It returns FailDelete when set.
func (m *MemoryClient) DeleteFile(_ context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PresignGet returns a memory:// URL carrying the requested response overrides
func (m *MemoryClient) PresignGet(_ context.Context, key string, opts GetOptions) (string, error) {
	if m.FailPresign != nil {
		return "", m.FailPresign
	}
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s does not exist", key)
	}

	q := url.Values{}
	q.Set("expires", m.now().Add(presignTTL(opts.TTL)).UTC().Format(time.RFC3339))
	if opts.ResponseContentType != "" {
		q.Set("response-content-type", opts.ResponseContentType)
	}
	if opts.ResponseContentDisposition != "" {
		q.Set("response-content-disposition", opts.ResponseContentDisposition)
	}
	return (&url.URL{Scheme: "memory", Path: "/" + key, RawQuery: q.Encode()}).String(), nil
}

// ListFiles returns the objects whose key starts with prefix, sorted by key
func (m *MemoryClient) ListFiles(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ObjectInfo, 0, len(m.objects))
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Object returns the stored bytes and content type of key
func (m *MemoryClient) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored objects
func (m *MemoryClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Touch overrides the modification time of key
func (m *MemoryClient) Touch(key string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[key]; ok {
		obj.modified = modified
		m.objects[key] = obj
	}
}

var _ Client = (*MemoryClient)(nil)
