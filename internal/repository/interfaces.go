package repository

import (
	"context"

	"github.com/Popolzen/linkguard/internal/model"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

// URLRepository хранит короткие ссылки. Хранилище является единственным источником
// истины об уникальности: Store обязан вернуть model.ErrSlugConflict, если
// слаг уже записан, даже когда Exists перед этим ответил false.
type URLRepository interface {
	Store(ctx context.Context, rec model.ShortURL) error
	Get(ctx context.Context, slug string) (model.ShortURL, error)
	Exists(ctx context.Context, slug string) (bool, error)
	Slugs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
