package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// SlugFilter отвечает "точно нет" или "возможно есть" для занятых слагов
type SlugFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewSlugFilter создаёт фильтр на expectedItems элементов с долей ложных срабатываний fpRate
func NewSlugFilter(expectedItems uint, fpRate float64) *SlugFilter {
	return &SlugFilter{
		filter: bloom.NewWithEstimates(expectedItems, fpRate),
	}
}

func (f *SlugFilter) Add(slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(slug)
}

// MightExist: false означает, что слаг точно не добавлялся
func (f *SlugFilter) MightExist(slug string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(slug)
}

// Count возвращает оценку числа добавленных слагов
func (f *SlugFilter) Count() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.ApproximatedSize()
}
