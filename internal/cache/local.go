// Package cache содержит локальный кэш переходов и фильтр занятых слагов.
package cache

import (
	"time"

	"github.com/Popolzen/linkguard/internal/model"
	"github.com/dgraph-io/ristretto"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultEmptyTTL = 10 * time.Second
)

// notFound хранится для слагов, которых нет в хранилище
type notFound struct{}

// LinkCache кэширует записи для GET /:id поверх ristretto
type LinkCache struct {
	cache    *ristretto.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewLinkCache создаёт кэш на maxItems записей, каждая стоит 1
func NewLinkCache(maxItems int64) (*LinkCache, error) {
	if maxItems <= 0 {
		maxItems = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
		// стоимость считается в записях, а не в байтах
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &LinkCache{cache: c, ttl: DefaultTTL, emptyTTL: DefaultEmptyTTL}, nil
}

// Get возвращает запись и признак попадания. found=false при попадании
// означает, что слаг недавно не нашёлся в хранилище.
func (l *LinkCache) Get(slug string) (rec model.ShortURL, found bool, hit bool) {
	v, ok := l.cache.Get(slug)
	if !ok {
		return model.ShortURL{}, false, false
	}
	switch val := v.(type) {
	case model.ShortURL:
		return val, true, true
	case notFound:
		return model.ShortURL{}, false, true
	}
	return model.ShortURL{}, false, false
}

// Set кладёт запись; для ссылок со сроком TTL не выходит за ExpiresAt
func (l *LinkCache) Set(rec model.ShortURL) {
	ttl := l.ttl
	if rec.ExpiresAt != nil {
		left := time.Until(*rec.ExpiresAt)
		if left <= 0 {
			return
		}
		ttl = min(ttl, left)
	}
	l.cache.SetWithTTL(rec.Slug, rec, 1, ttl)
}

func (l *LinkCache) SetNotFound(slug string) {
	l.cache.SetWithTTL(slug, notFound{}, 1, l.emptyTTL)
}

func (l *LinkCache) Del(slug string) {
	l.cache.Del(slug)
}

// Wait дожидается применения буферизованных записей
func (l *LinkCache) Wait() {
	l.cache.Wait()
}

func (l *LinkCache) Close() {
	l.cache.Close()
}
