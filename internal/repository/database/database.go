package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Popolzen/linkguard/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// URLRepository хранит ссылки в PostgreSQL. Уникальность слага обеспечивает
// ограничение short_urls_slug_key.
type URLRepository struct {
	DB *sql.DB
}

func NewURLRepository(db *sql.DB) *URLRepository {
	return &URLRepository{DB: db}
}

// Store сохраняет ссылку; при нарушении уникальности слага возвращает model.ErrSlugConflict
func (r *URLRepository) Store(ctx context.Context, rec model.ShortURL) error {
	if rec.UUID == "" {
		rec.UUID = uuid.New().String()
	}

	query := `
		INSERT INTO short_urls (uuid, slug, original_url, user_id, strategy, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		rec.UUID, rec.Slug, rec.OriginalURL, rec.UserID, rec.Strategy, rec.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.ErrSlugConflict
		}
		return fmt.Errorf("ошибка при сохранении URL: %w", err)
	}
	return nil
}

// Get получает запись по слагу
func (r *URLRepository) Get(ctx context.Context, slug string) (model.ShortURL, error) {
	query := `
		SELECT uuid, slug, original_url, user_id, strategy, created_at, expires_at
		FROM short_urls
		WHERE slug = $1
	`

	var rec model.ShortURL
	var expiresAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, slug).Scan(
		&rec.UUID, &rec.Slug, &rec.OriginalURL, &rec.UserID, &rec.Strategy, &rec.CreatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ShortURL{}, model.ErrNotFound
		}
		return model.ShortURL{}, fmt.Errorf("ошибка при получении URL: %w", err)
	}
	if expiresAt.Valid {
		rec.ExpiresAt = &expiresAt.Time
	}
	return rec, nil
}

func (r *URLRepository) Exists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM short_urls WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки слага: %w", err)
	}
	return exists, nil
}

// Slugs возвращает все слаги, используется для прогрева фильтра
func (r *URLRepository) Slugs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT slug FROM short_urls`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения слагов: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("ошибка чтения слага: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

func (r *URLRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *URLRepository) Close() error {
	return r.DB.Close()
}
