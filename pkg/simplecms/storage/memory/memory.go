package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Store is an in-memory implementation of the simplecms.MediaStore
// interface, intended for tests and local development.
type Store struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	mimeType map[string]string
}

// New creates a new in-memory media store
func New() *Store {
	return &Store{
		objects:  make(map[string][]byte),
		mimeType: make(map[string]string),
	}
}

// Upload stores the asset under a generated key and returns its reference.
// URLs use the memory:// scheme and resolve only within this process.
func (s *Store) Upload(ctx context.Context, reader io.Reader, params simplecms.UploadParams) (*simplecms.MediaRef, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	key := objectKey(params)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	if params.MimeType != "" {
		s.mimeType[key] = params.MimeType
	} else {
		s.mimeType[key] = "application/octet-stream"
	}

	return &simplecms.MediaRef{
		URL:      "memory://" + key,
		PublicID: key,
	}, nil
}

// Delete removes the asset
func (s *Store) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[publicID]; !exists {
		return errors.New("object not found")
	}
	delete(s.objects, publicID)
	delete(s.mimeType, publicID)
	return nil
}

// Get returns the stored bytes, for tests
func (s *Store) Get(publicID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[publicID]
	return data, exists
}

// Len returns the number of stored assets, for tests
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func objectKey(params simplecms.UploadParams) string {
	name := path.Base(params.FileName)
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", params.Folder, uuid.New(), name)
}
