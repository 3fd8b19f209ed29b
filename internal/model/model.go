package model

import (
	"errors"
	"time"
)

// ShortURL описывает запись о короткой ссылке в хранилище.
type ShortURL struct {
	UUID        string     `json:"uuid"`
	Slug        string     `json:"slug"`
	OriginalURL string     `json:"original_url"`
	UserID      string     `json:"user_id,omitempty"`
	Strategy    string     `json:"strategy,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Expired сообщает, истёк ли срок жизни ссылки к моменту now.
func (u ShortURL) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && !now.Before(*u.ExpiresAt)
}

type URL struct {
	URL string `json:"url"`
}

// ShortenRequest: тело POST /api/shorten.
type ShortenRequest struct {
	URL       string `json:"url"`
	Strategy  string `json:"strategy,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Length    int    `json:"length,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // секунды
}

type ShortenResponse struct {
	Result string `json:"result"`
	Slug   string `json:"slug"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
}

// CheckResponse содержит результат проверки URL без создания ссылки.
type CheckResponse struct {
	Valid         bool   `json:"valid"`
	NormalizedURL string `json:"normalized_url,omitempty"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
	Title         string `json:"title,omitempty"`
}

type AvailabilityResponse struct {
	Slug        string   `json:"slug"`
	Available   bool     `json:"available"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Ошибки хранилища
var (
	ErrNotFound = errors.New("short url not found")
	// ErrSlugConflict: нарушено ограничение уникальности слага при записи.
	ErrSlugConflict = errors.New("slug already exists")
	ErrExpired      = errors.New("short url has expired")
)
