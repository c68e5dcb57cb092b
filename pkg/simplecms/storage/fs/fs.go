package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Store is a filesystem implementation of the simplecms.MediaStore interface
type Store struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem store
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix the files are served under
}

// New creates a new filesystem media store
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// Upload writes the asset under a generated key below the base directory.
func (s *Store) Upload(ctx context.Context, reader io.Reader, params simplecms.UploadParams) (*simplecms.MediaRef, error) {
	key := objectKey(params)
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &simplecms.MediaRef{
		URL:      s.urlPrefix + "/" + key,
		PublicID: key,
	}, nil
}

// Delete removes the asset file
func (s *Store) Delete(ctx context.Context, publicID string) error {
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(publicID))
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func objectKey(params simplecms.UploadParams) string {
	name := path.Base(params.FileName)
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", params.Folder, uuid.New(), name)
}
