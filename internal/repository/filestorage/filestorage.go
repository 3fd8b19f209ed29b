package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Popolzen/linkguard/internal/model"
	"github.com/google/uuid"
)

// URLRepository держит ссылки в памяти и сохраняет их в JSON-файл
// после каждой записи.
type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]model.ShortURL
	path string
}

// NewURLRepository загружает ссылки из файла. Отсутствующий или
// повреждённый файл даёт пустое хранилище.
func NewURLRepository(path string) *URLRepository {
	repo := &URLRepository{
		urls: map[string]model.ShortURL{},
		path: path,
	}

	if err := repo.loadURLs(); err != nil {
		repo.urls = map[string]model.ShortURL{}
	}
	return repo
}

func (r *URLRepository) Store(_ context.Context, rec model.ShortURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[rec.Slug]; exists {
		return model.ErrSlugConflict
	}
	if rec.UUID == "" {
		rec.UUID = uuid.New().String()
	}
	r.urls[rec.Slug] = rec

	if err := r.saveURLs(); err != nil {
		delete(r.urls, rec.Slug)
		return err
	}
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

// Close сбрасывает текущее состояние на диск
func (r *URLRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveURLs()
}

// loadURLs - загружает данные из файла в память.
func (r *URLRepository) loadURLs() error {
	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var records []model.ShortURL
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("ошибка десериализации JSON: %w", err)
	}
	for _, rec := range records {
		if rec.Slug == "" {
			continue
		}
		r.urls[rec.Slug] = rec
	}
	return nil
}

// saveURLs пишет во временный файл и переименовывает его,
// чтобы при сбое не остался обрезанный JSON.
func (r *URLRepository) saveURLs() error {
	records := make([]model.ShortURL, 0, len(r.urls))
	for _, rec := range r.urls {
		records = append(records, rec)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Join(fmt.Errorf("ошибка переименования файла: %w", err), os.Remove(tmp))
	}
	return nil
}
