// Package filtered оборачивает хранилище фильтром Блума, чтобы проверки
// свободных слагов не ходили в базу, когда слаг точно не занят.
package filtered

import (
	"context"
	"errors"
	"fmt"

	"github.com/Popolzen/linkguard/internal/cache"
	"github.com/Popolzen/linkguard/internal/model"
	"github.com/Popolzen/linkguard/internal/repository"
)

type URLRepository struct {
	repository.URLRepository
	filter *cache.SlugFilter
}

func NewURLRepository(inner repository.URLRepository, filter *cache.SlugFilter) *URLRepository {
	return &URLRepository{URLRepository: inner, filter: filter}
}

// Warm загружает в фильтр все уже сохранённые слаги
func (r *URLRepository) Warm(ctx context.Context) (int, error) {
	slugs, err := r.URLRepository.Slugs(ctx)
	if err != nil {
		return 0, fmt.Errorf("прогрев фильтра: %w", err)
	}
	for _, s := range slugs {
		r.filter.Add(s)
	}
	return len(slugs), nil
}

// Store добавляет слаг в фильтр и при успехе, и при конфликте
func (r *URLRepository) Store(ctx context.Context, rec model.ShortURL) error {
	err := r.URLRepository.Store(ctx, rec)
	if err == nil || errors.Is(err, model.ErrSlugConflict) {
		r.filter.Add(rec.Slug)
	}
	return err
}

// Exists отвечает false без обращения к хранилищу, если фильтр исключает слаг
func (r *URLRepository) Exists(ctx context.Context, slug string) (bool, error) {
	if !r.filter.MightExist(slug) {
		return false, nil
	}
	return r.URLRepository.Exists(ctx, slug)
}
