// Package shortener связывает проверку URL, генерацию слагов и хранилище.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Popolzen/linkguard/internal/cache"
	"github.com/Popolzen/linkguard/internal/linkcheck"
	"github.com/Popolzen/linkguard/internal/metrics"
	"github.com/Popolzen/linkguard/internal/model"
	"github.com/Popolzen/linkguard/internal/repository"
	"github.com/Popolzen/linkguard/internal/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Strategy задаёт способ выбора слага.
type Strategy string

const (
	Random    Strategy = "random"
	Memorable Strategy = "memorable"
	Hash      Strategy = "hash"
	Vanity    Strategy = "vanity"
)

// Сколько раз перегенерировать слаг, если его заняли между проверкой и записью.
const maxStoreAttempts = 3

var (
	ErrUnknownStrategy = errors.New("unknown slug strategy")
	ErrSlugTaken       = errors.New("slug is already taken")
)

// TakenError: пользовательский слаг занят, Suggestions содержит свободные варианты.
type TakenError struct {
	Slug        string
	Suggestions []string
}

func (e *TakenError) Error() string { return "Slug is already taken" }

func (e *TakenError) Unwrap() error { return ErrSlugTaken }

type ShortenRequest struct {
	URL      string
	Strategy Strategy
	// Slug используется только стратегией Vanity.
	Slug string
	// Length: длина для Random и Hash, 0 означает значение по умолчанию.
	Length int
	// TTL: срок жизни ссылки, 0 означает бессрочно.
	TTL    time.Duration
	UserID string
}

type ShortenResult struct {
	Slug  string
	URL   string
	Title string
	// Existing: для Hash найдена ранее созданная ссылка на тот же URL.
	Existing bool
}

type CheckResult struct {
	linkcheck.Result
	Title string
}

type Availability struct {
	Slug        string
	Available   bool
	Err         error
	Suggestions []string
}

type URLService struct {
	repo      repository.URLRepository
	validator *linkcheck.Validator
	slugs     *slug.Generator
	cache     *cache.LinkCache
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
	loads     singleflight.Group
}

type Option func(*URLService)

func WithCache(c *cache.LinkCache) Option {
	return func(s *URLService) { s.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *URLService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *URLService) { s.log = l }
}

// WithClock подменяет часы, по которым считается срок жизни.
func WithClock(now func() time.Time) Option {
	return func(s *URLService) { s.now = now }
}

// NewURLService собирает сервис. Генератор должен опрашивать то же хранилище,
// что передано в repo.
func NewURLService(repo repository.URLRepository, v *linkcheck.Validator, g *slug.Generator, opts ...Option) *URLService {
	s := &URLService{
		repo:      repo,
		validator: v,
		slugs:     g,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten проверяет URL, выбирает слаг и сохраняет ссылку.
// Ошибки: *linkcheck.Rejection, *slug.VanityError, *TakenError,
// slug.ErrExhausted, slug.ErrInvalidLength, ErrUnknownStrategy.
func (s *URLService) Shorten(ctx context.Context, req ShortenRequest) (ShortenResult, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = Random
	}
	switch strategy {
	case Random, Memorable, Hash, Vanity:
	default:
		return ShortenResult{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	res := s.validator.Validate(req.URL)
	if !res.Valid {
		s.rejected(req.URL, res.Err)
		return ShortenResult{}, res.Err
	}
	target := res.NormalizedURL

	rec := model.ShortURL{
		OriginalURL: target,
		UserID:      req.UserID,
		Strategy:    string(strategy),
		CreatedAt:   s.now().UTC(),
	}
	if req.TTL > 0 {
		expires := rec.CreatedAt.Add(req.TTL)
		rec.ExpiresAt = &expires
	}

	var err error
	switch strategy {
	case Vanity:
		rec, err = s.storeVanity(ctx, rec, req.Slug)
	case Hash:
		var existing bool
		if rec, existing, err = s.existingHash(ctx, rec, req.Length); err == nil && existing {
			return s.result(rec, true), nil
		}
		if err == nil {
			rec, err = s.storeGenerated(ctx, rec, strategy, req.Length)
		}
	default:
		rec, err = s.storeGenerated(ctx, rec, strategy, req.Length)
	}
	if err != nil {
		return ShortenResult{}, err
	}

	if s.metrics != nil {
		s.metrics.SlugsGenerated.WithLabelValues(string(strategy)).Inc()
	}
	s.log.Debug("short link created",
		zap.String("slug", rec.Slug),
		zap.String("strategy", string(strategy)),
		zap.String("url", rec.OriginalURL))
	return s.result(rec, false), nil
}

// storeGenerated генерирует слаг и пишет запись. Проверка оракулом не
// исключает гонку, поэтому конфликт уникальности ведёт к новой попытке.
func (s *URLService) storeGenerated(ctx context.Context, rec model.ShortURL, strategy Strategy, length int) (model.ShortURL, error) {
	for range maxStoreAttempts {
		code, err := s.generate(ctx, strategy, rec.OriginalURL, length)
		if err != nil {
			if errors.Is(err, slug.ErrExhausted) {
				s.exhausted(strategy, err)
			} else if !errors.Is(err, slug.ErrInvalidLength) {
				s.log.Error("slug oracle failed", zap.String("strategy", string(strategy)), zap.Error(err))
			}
			return model.ShortURL{}, err
		}

		rec.Slug = code
		err = s.repo.Store(ctx, rec)
		if err == nil {
			s.forget(code)
			return rec, nil
		}
		if !errors.Is(err, model.ErrSlugConflict) {
			return model.ShortURL{}, fmt.Errorf("store %q: %w", code, err)
		}
		s.conflict(code)
	}

	err := fmt.Errorf("%w: %s slug kept conflicting on store after %d attempts", slug.ErrExhausted, strategy, maxStoreAttempts)
	s.exhausted(strategy, err)
	return model.ShortURL{}, err
}

func (s *URLService) generate(ctx context.Context, strategy Strategy, target string, length int) (string, error) {
	switch strategy {
	case Memorable:
		return s.slugs.Memorable(ctx)
	case Hash:
		return s.slugs.Hash(ctx, target, length)
	default:
		return s.slugs.Random(ctx, length)
	}
}

// existingHash ищет ссылку, уже выданную этому URL под базовым хеш-слагом.
func (s *URLService) existingHash(ctx context.Context, rec model.ShortURL, length int) (model.ShortURL, bool, error) {
	base, err := slug.HashOf(rec.OriginalURL, length)
	if err != nil {
		return rec, false, err
	}
	prev, err := s.repo.Get(ctx, base)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return rec, false, nil
	case err != nil:
		return rec, false, fmt.Errorf("lookup %q: %w", base, err)
	}
	if prev.OriginalURL == rec.OriginalURL && !prev.Expired(s.now()) {
		return prev, true, nil
	}
	return rec, false, nil
}

func (s *URLService) storeVanity(ctx context.Context, rec model.ShortURL, desired string) (model.ShortURL, error) {
	if err := s.slugs.ValidateVanity(ctx, desired); err != nil {
		if errors.Is(err, slug.ErrTaken) {
			return model.ShortURL{}, s.taken(ctx, desired)
		}
		if s.metrics != nil {
			var ve *slug.VanityError
			if errors.As(err, &ve) {
				s.metrics.Rejections.WithLabelValues(ve.Code()).Inc()
			}
		}
		return model.ShortURL{}, err
	}

	rec.Slug = slug.Normalize(desired)
	err := s.repo.Store(ctx, rec)
	switch {
	case errors.Is(err, model.ErrSlugConflict):
		s.conflict(rec.Slug)
		return model.ShortURL{}, s.taken(ctx, desired)
	case err != nil:
		return model.ShortURL{}, fmt.Errorf("store %q: %w", rec.Slug, err)
	}
	s.forget(rec.Slug)
	return rec, nil
}

// forget сбрасывает запись кэша, в том числе запомненный промах по слагу.
func (s *URLService) forget(code string) {
	if s.cache != nil {
		s.cache.Del(code)
	}
}

// taken собирает варианты для занятого слага. Нехватка вариантов не ошибка.
func (s *URLService) taken(ctx context.Context, desired string) error {
	suggestions, err := s.slugs.Suggest(ctx, desired, slug.DefaultSuggestions)
	if err != nil && !errors.Is(err, slug.ErrExhausted) {
		return err
	}
	if s.metrics != nil {
		s.metrics.Rejections.WithLabelValues("slug_taken").Inc()
	}
	return &TakenError{Slug: slug.Normalize(desired), Suggestions: suggestions}
}

// Resolve возвращает исходный URL по слагу: сначала из кэша, затем из хранилища.
func (s *URLService) Resolve(ctx context.Context, code string) (string, error) {
	rec, err := s.lookup(ctx, slug.Normalize(code))
	if err != nil {
		s.redirect(err)
		return "", err
	}
	if rec.Expired(s.now()) {
		s.redirect(model.ErrExpired)
		return "", model.ErrExpired
	}
	s.redirect(nil)
	return rec.OriginalURL, nil
}

func (s *URLService) lookup(ctx context.Context, code string) (model.ShortURL, error) {
	if s.cache != nil {
		if rec, found, hit := s.cache.Get(code); hit {
			if !found {
				return model.ShortURL{}, model.ErrNotFound
			}
			return rec, nil
		}
	}

	// Одновременные промахи по одному слагу читают хранилище один раз
	v, err, _ := s.loads.Do(code, func() (any, error) {
		return s.load(ctx, code)
	})
	if err != nil {
		return model.ShortURL{}, err
	}
	return v.(model.ShortURL), nil
}

func (s *URLService) load(ctx context.Context, code string) (model.ShortURL, error) {
	rec, err := s.repo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			if s.cache != nil {
				s.cache.SetNotFound(code)
			}
			return model.ShortURL{}, model.ErrNotFound
		}
		return model.ShortURL{}, fmt.Errorf("resolve %q: %w", code, err)
	}
	if s.cache != nil {
		s.cache.Set(rec)
	}
	return rec, nil
}

// Check проверяет URL без сохранения и подбирает заголовок для превью.
func (s *URLService) Check(raw string) CheckResult {
	res := s.validator.Validate(raw)
	if !res.Valid {
		s.rejected(raw, res.Err)
		return CheckResult{Result: res}
	}
	title, _ := linkcheck.Title(res.NormalizedURL)
	return CheckResult{Result: res, Title: title}
}

// Availability проверяет пользовательский слаг. Отказ по правилам
// возвращается в Availability.Err, ошибка хранилища вторым значением.
func (s *URLService) Availability(ctx context.Context, desired string) (Availability, error) {
	out := Availability{Slug: slug.Normalize(desired)}

	err := s.slugs.ValidateVanity(ctx, desired)
	var ve *slug.VanityError
	switch {
	case err == nil:
		out.Available = true
		return out, nil
	case !errors.As(err, &ve):
		return Availability{}, err
	}

	out.Err = ve
	if errors.Is(ve, slug.ErrTaken) {
		suggestions, err := s.slugs.Suggest(ctx, desired, slug.DefaultSuggestions)
		if err != nil && !errors.Is(err, slug.ErrExhausted) {
			return Availability{}, err
		}
		out.Suggestions = suggestions
	}
	return out, nil
}

func (s *URLService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *URLService) result(rec model.ShortURL, existing bool) ShortenResult {
	title, _ := linkcheck.Title(rec.OriginalURL)
	return ShortenResult{Slug: rec.Slug, URL: rec.OriginalURL, Title: title, Existing: existing}
}

func (s *URLService) rejected(raw string, err error) {
	code := "invalid"
	var rej *linkcheck.Rejection
	if errors.As(err, &rej) {
		code = rej.Code()
	}
	if s.metrics != nil {
		s.metrics.Rejections.WithLabelValues(code).Inc()
	}
	s.log.Info("url rejected", zap.String("code", code), zap.String("url", raw))
}

func (s *URLService) exhausted(strategy Strategy, err error) {
	if s.metrics != nil {
		s.metrics.Exhaustions.WithLabelValues(string(strategy)).Inc()
	}
	s.log.Warn("slug space exhausted", zap.String("strategy", string(strategy)), zap.Error(err))
}

func (s *URLService) conflict(code string) {
	if s.metrics != nil {
		s.metrics.StoreConflicts.Inc()
	}
	s.log.Debug("slug conflict on store", zap.String("slug", code))
}

func (s *URLService) redirect(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "found"
	switch {
	case errors.Is(err, model.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, model.ErrExpired):
		outcome = "expired"
	case err != nil:
		outcome = "error"
	}
	s.metrics.Redirects.WithLabelValues(outcome).Inc()
}
