// Package slug генерирует короткие идентификаторы ссылок.
//
// Генератор не хранит состояния между вызовами. Занятость слага он узнаёт
// у Oracle, который предоставляет вызывающий код (обычно хранилище).
// Проверка занятости носит рекомендательный характер: два параллельных запроса
// могут получить один и тот же свободный слаг. Уникальность гарантирует
// ограничение в хранилище, а вызывающий код повторяет генерацию при конфликте.
package slug

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

//go:generate mockgen -source=slug.go -destination=mocks/mock_oracle.go -package=mocks

// Oracle сообщает, занят ли слаг. Ошибка оракула никогда не трактуется как "свободен".
type Oracle interface {
	Exists(ctx context.Context, slug string) (bool, error)
}

const (
	// Alphabet: символы генерируемых слагов.
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	DefaultLength      = 6
	DefaultHashLength  = 8
	DefaultMaxAttempts = 100
	MaxLength          = 50
)

var (
	// ErrExhausted: бюджет попыток исчерпан, свободный слаг не найден.
	ErrExhausted     = errors.New("slug space exhausted")
	ErrInvalidLength = errors.New("invalid slug length")
)

// Generator безопасен для конкурентного использования.
type Generator struct {
	oracle      Oracle
	maxAttempts int
	intN        func(n int) int
	// слова, занятые маршрутами сервиса, сверх reservedWords
	routes map[string]struct{}
}

type Option func(*Generator)

// WithMaxAttempts ограничивает число кандидатов на один вызов.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRand подменяет источник случайности, например детерминированным в тестах.
func WithRand(r *rand.Rand) Option {
	var mu sync.Mutex
	return func(g *Generator) {
		g.intN = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return r.IntN(n)
		}
	}
}

// WithReserved запрещает слаги, совпадающие с words. Сюда передают
// статические маршруты верхнего уровня, иначе они перекроют короткую ссылку.
func WithReserved(words ...string) Option {
	return func(g *Generator) {
		if g.routes == nil {
			g.routes = make(map[string]struct{}, len(words))
		}
		for _, w := range words {
			g.routes[Normalize(w)] = struct{}{}
		}
	}
}

func New(oracle Oracle, opts ...Option) *Generator {
	g := &Generator{
		oracle:      oracle,
		maxAttempts: DefaultMaxAttempts,
		intN:        rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Random возвращает свободный слаг из Alphabet длины length (0 означает DefaultLength).
func (g *Generator) Random(ctx context.Context, length int) (string, error) {
	if length == 0 {
		length = DefaultLength
	}
	if length < 1 || length > MaxLength {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	return g.firstFree(ctx, "random", func() string {
		return g.randomString(length)
	})
}

// Memorable возвращает слаг вида adjective-noun-verb-adjective-noun.
func (g *Generator) Memorable(ctx context.Context) (string, error) {
	return g.firstFree(ctx, "memorable", func() string {
		return strings.Join([]string{
			g.pick(adjectives),
			g.pick(nouns),
			g.pick(verbs),
			g.pick(adjectives),
			g.pick(nouns),
		}, "-")
	})
}

// firstFree перебирает кандидатов, пока оракул не скажет, что слаг свободен.
func (g *Generator) firstFree(ctx context.Context, strategy string, next func() string) (string, error) {
	for range g.maxAttempts {
		candidate := next()
		if g.reserved(candidate) {
			continue
		}
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free %s slug after %d attempts", ErrExhausted, strategy, g.maxAttempts)
}

// reserved сообщает, занят ли слаг платформой или маршрутом сервиса.
func (g *Generator) reserved(s string) bool {
	if IsReserved(s) {
		return true
	}
	_, ok := g.routes[Normalize(s)]
	return ok
}

func (g *Generator) exists(ctx context.Context, candidate string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	taken, err := g.oracle.Exists(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", candidate, err)
	}
	return taken, nil
}

func (g *Generator) randomString(length int) string {
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(Alphabet[g.intN(len(Alphabet))])
	}
	return b.String()
}

func (g *Generator) pick(words []string) string {
	return words[g.intN(len(words))]
}
