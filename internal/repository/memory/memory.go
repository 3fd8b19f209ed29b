package memory

import (
	"context"
	"sync"

	"github.com/Popolzen/linkguard/internal/model"
)

type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]model.ShortURL
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: map[string]model.ShortURL{},
	}
}

// Store сохраняет ссылку; для занятого слага возвращает model.ErrSlugConflict
func (r *URLRepository) Store(_ context.Context, rec model.ShortURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[rec.Slug]; exists {
		return model.ErrSlugConflict
	}
	r.urls[rec.Slug] = rec
	return nil
}

func (r *URLRepository) Get(_ context.Context, slug string) (model.ShortURL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, exists := r.urls[slug]; exists {
		return rec, nil
	}
	return model.ShortURL{}, model.ErrNotFound
}

func (r *URLRepository) Exists(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.urls[slug]
	return exists, nil
}

func (r *URLRepository) Slugs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.urls))
	for s := range r.urls {
		slugs = append(slugs, s)
	}
	return slugs, nil
}

func (r *URLRepository) Ping(_ context.Context) error {
	return nil
}

func (r *URLRepository) Close() error {
	return nil
}
