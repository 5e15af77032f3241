package repository

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"github.com/bbarathsrinivasan/ACMHack/pkg/storage"
)

// FileCollection keeps the plan collection in a single JSON file replaced by atomic rename.
// The compare and rename run under a process-local mutex; readers never take it.
type FileCollection struct {
	storage  *storage.LocalStorage
	filename string
	mu       sync.Mutex
}

// NewFileCollection stores the collection as filename inside storage.
func NewFileCollection(storage *storage.LocalStorage, filename string) *FileCollection {
	return &FileCollection{storage: storage, filename: filename}
}

// Load implements CollectionBackend.
func (f *FileCollection) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := f.storage.ReadFile(f.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCollectionMissing
	}
	return content, err
}

// Replace implements CollectionBackend.
func (f *FileCollection) Replace(ctx context.Context, expected string, next []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.Load(ctx)
	switch {
	case errors.Is(err, ErrCollectionMissing):
		if expected != "" {
			return ErrVersionMismatch
		}
	case err != nil:
		return err
	case VersionOf(current) != expected:
		return ErrVersionMismatch
	}
	return f.storage.AtomicReplace(f.filename, next)
}
