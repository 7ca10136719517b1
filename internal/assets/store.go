package assets

import (
	"context"
	"sync"
)

// Store caches upload results by local path so one file is never
// uploaded twice within a run. Fleet builds reuse the same logo and
// design files across many products.
type Store struct {
	uploader Uploader

	mu    sync.Mutex
	cache map[string]string
}

// NewStore wraps an uploader with a per-path result cache.
func NewStore(uploader Uploader) *Store {
	return &Store{
		uploader: uploader,
		cache:    make(map[string]string),
	}
}

// Upload returns the hosted URL for path, uploading on first use.
func (s *Store) Upload(ctx context.Context, path string) (string, error) {
	return s.memoize(ctx, "plain:"+path, path, s.uploader.Upload)
}

// UploadPreservingAlpha returns the hosted URL for path with alpha
// intact, uploading on first use.
func (s *Store) UploadPreservingAlpha(ctx context.Context, path string) (string, error) {
	return s.memoize(ctx, "alpha:"+path, path, s.uploader.UploadPreservingAlpha)
}

func (s *Store) memoize(ctx context.Context, key, path string, fn func(context.Context, string) (string, error)) (string, error) {
	s.mu.Lock()
	if url, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return url, nil
	}
	s.mu.Unlock()

	url, err := fn(ctx, path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = url
	s.mu.Unlock()
	return url, nil
}
