package slug

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// MaxHashLength равен числу base36-цифр в 64-битном значении.
const MaxHashLength = 13

// Hash возвращает детерминированный слаг для url (length 0 означает DefaultHashLength).
// Пока коллизий нет, повторные вызовы дают один и тот же результат.
// При коллизии к слагу дописывается счётчик: slug1, slug2, ...
func (g *Generator) Hash(ctx context.Context, url string, length int) (string, error) {
	base, err := HashOf(url, length)
	if err != nil {
		return "", err
	}

	candidate := base
	for i := 0; i < g.maxAttempts; i++ {
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}
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
	return "", fmt.Errorf("%w: no free hash slug for %q after %d attempts", ErrExhausted, url, g.maxAttempts)
}

// HashOf возвращает базовый хеш-слаг url без обращения к оракулу.
func HashOf(url string, length int) (string, error) {
	if length == 0 {
		length = DefaultHashLength
	}
	if length < 1 || length > MaxHashLength {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	return hashSlug(url, length)
}

// hashSlug берёт первые 16 hex-символов SHA-256 и переводит число в base36,
// младшие разряды справа. Если число кончилось раньше, слева остаётся Alphabet[0].
func hashSlug(url string, length int) (string, error) {
	sum := sha256.Sum256([]byte(url))
	n, err := strconv.ParseUint(hex.EncodeToString(sum[:])[:16], 16, 64)
	if err != nil {
		return "", fmt.Errorf("parse digest: %w", err)
	}

	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = Alphabet[n%uint64(len(Alphabet))]
		n /= uint64(len(Alphabet))
	}
	return string(out), nil
}
