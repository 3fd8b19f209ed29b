package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinVanityLength    = 3
	MaxVanityLength    = MaxLength
	DefaultSuggestions = 5
)

// Причины отказа в пользовательском слаге.
var (
	ErrTooShort     = errors.New("slug too short")
	ErrTooLong      = errors.New("slug too long")
	ErrInvalidChars = errors.New("slug has invalid characters")
	ErrReserved     = errors.New("slug is reserved")
	ErrTaken        = errors.New("slug is taken")
)

// VanityError описывает отказ в пользовательском слаге с сообщением для пользователя.
type VanityError struct {
	reason  error
	message string
}

func (e *VanityError) Error() string { return e.message }

func (e *VanityError) Unwrap() error { return e.reason }

// Code возвращает машинный код причины для ответов API.
func (e *VanityError) Code() string {
	switch e.reason {
	case ErrTooShort:
		return "slug_too_short"
	case ErrTooLong:
		return "slug_too_long"
	case ErrInvalidChars:
		return "slug_invalid_chars"
	case ErrReserved:
		return "slug_reserved"
	case ErrTaken:
		return "slug_taken"
	}
	return "slug_invalid"
}

// Слова навигации и служебные маршруты платформы.
var reservedWords = map[string]struct{}{
	"api": {}, "admin": {}, "www": {}, "mail": {}, "ftp": {}, "localhost": {},
	"root": {}, "help": {}, "support": {}, "about": {}, "contact": {}, "terms": {},
	"privacy": {}, "login": {}, "register": {}, "signup": {}, "signin": {}, "logout": {},
	"dashboard": {}, "profile": {}, "settings": {}, "account": {}, "billing": {}, "payment": {},
	"short": {}, "url": {}, "link": {}, "redirect": {}, "stats": {}, "analytics": {},
}

// IsReserved сообщает, занято ли слово платформой.
func IsReserved(s string) bool {
	_, ok := reservedWords[Normalize(s)]
	return ok
}

// Normalize приводит пользовательский слаг к виду, в котором он хранится.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateVanity проверяет пользовательский слаг: длину, алфавит,
// зарезервированные слова и занятость. Первое нарушенное правило определяет
// ответ. Отказ возвращается как *VanityError, ошибка оракула возвращается как есть.
func (g *Generator) ValidateVanity(ctx context.Context, s string) error {
	n := utf8.RuneCountInString(s)
	if n < MinVanityLength {
		return &VanityError{reason: ErrTooShort, message: fmt.Sprintf("Slug is too short (minimum %d characters)", MinVanityLength)}
	}
	if n > MaxVanityLength {
		return &VanityError{reason: ErrTooLong, message: fmt.Sprintf("Slug is too long (maximum %d characters)", MaxVanityLength)}
	}

	folded := strings.ToLower(s)
	for _, r := range folded {
		if !isVanityRune(r) {
			return &VanityError{reason: ErrInvalidChars, message: "Slug can only contain letters, numbers, hyphens and underscores"}
		}
	}

	if g.reserved(folded) {
		return &VanityError{reason: ErrReserved, message: fmt.Sprintf("'%s' is a reserved word", folded)}
	}

	taken, err := g.exists(ctx, folded)
	if err != nil {
		return err
	}
	if taken {
		return &VanityError{reason: ErrTaken, message: "Slug is already taken"}
	}
	return nil
}

// Suggest предлагает count свободных вариантов вместо занятого слага:
// сначала desired1, desired2, ..., затем desired-NN со случайными цифрами.
// При исчерпании бюджета возвращает собранное вместе с ErrExhausted.
func (g *Generator) Suggest(ctx context.Context, desired string, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultSuggestions
	}
	desired = Normalize(desired)

	out := make([]string, 0, count)
	seen := make(map[string]struct{}, count)

	offer := func(candidate string) (bool, error) {
		if len(candidate) > MaxVanityLength || g.reserved(candidate) {
			return false, nil
		}
		if _, dup := seen[candidate]; dup {
			return false, nil
		}
		taken, err := g.exists(ctx, candidate)
		if err != nil || taken {
			return false, err
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
		return true, nil
	}

	for i := 1; i <= count && len(out) < count; i++ {
		if _, err := offer(desired + strconv.Itoa(i)); err != nil {
			return out, err
		}
	}

	// "-NN" добавляет три символа, длинную основу укорачиваем
	base := desired
	if len(base)+3 > MaxVanityLength {
		base = strings.TrimRight(base[:MaxVanityLength-3], "-")
	}
	for attempt := 0; len(out) < count; attempt++ {
		if attempt >= g.maxAttempts {
			return out, fmt.Errorf("%w: %d of %d suggestions for %q", ErrExhausted, len(out), count, desired)
		}
		if _, err := offer(fmt.Sprintf("%s-%d", base, 10+g.intN(90))); err != nil {
			return out, err
		}
	}

	return out, nil
}

func isVanityRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
