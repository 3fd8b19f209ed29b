package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Popolzen/linkguard/internal/slug/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestValidateVanity(t *testing.T) {
	g := New(takenSet{"taken-one": true})

	tests := []struct {
		name    string
		slug    string
		reason  error
		message string
	}{
		{name: "слишком короткий", slug: "ab", reason: ErrTooShort, message: "too short"},
		{name: "пустой", slug: "", reason: ErrTooShort, message: "too short"},
		{name: "слишком длинный", slug: strings.Repeat("a", 51), reason: ErrTooLong, message: "too long"},
		{name: "пробел", slug: "my link", reason: ErrInvalidChars, message: "can only contain"},
		{name: "слеш", slug: "a/b/c", reason: ErrInvalidChars, message: "can only contain"},
		{name: "кириллица", slug: "ссылка", reason: ErrInvalidChars, message: "can only contain"},
		{name: "зарезервирован", slug: "admin", reason: ErrReserved, message: "reserved"},
		{name: "зарезервирован в верхнем регистре", slug: "API", reason: ErrReserved, message: "'api' is a reserved word"},
		{name: "занят", slug: "taken-one", reason: ErrTaken, message: "already taken"},
		{name: "занят без учёта регистра", slug: "Taken-One", reason: ErrTaken, message: "already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateVanity(context.Background(), tt.slug)

			require.Error(t, err)
			var vErr *VanityError
			require.ErrorAs(t, err, &vErr)
			assert.ErrorIs(t, err, tt.reason)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateVanity_Accepts(t *testing.T) {
	g := New(takenSet{})

	for _, s := range []string{"my-cool-link", "abc", "Summer_Sale-2025", strings.Repeat("z", 50)} {
		assert.NoError(t, g.ValidateVanity(context.Background(), s), s)
	}
}

func TestValidateVanity_RulesBeforeOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	// оракул не должен вызываться для слагов, не прошедших статические правила
	oracle.EXPECT().Exists(gomock.Any(), gomock.Any()).Times(0)

	g := New(oracle)
	assert.ErrorIs(t, g.ValidateVanity(context.Background(), "ab"), ErrTooShort)
	assert.ErrorIs(t, g.ValidateVanity(context.Background(), "login"), ErrReserved)
}

func TestValidateVanity_OracleError(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	dbErr := errors.New("timeout")
	oracle.EXPECT().Exists(gomock.Any(), "my-link").Return(false, dbErr)

	err := New(oracle).ValidateVanity(context.Background(), "My-Link")

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	var vErr *VanityError
	assert.False(t, errors.As(err, &vErr), "ошибка оракула не должна выглядеть как отказ")
}

func TestValidateVanity_RouteWords(t *testing.T) {
	g := New(takenSet{}, WithReserved("ping", "Metrics"))

	for _, s := range []string{"ping", "METRICS"} {
		err := g.ValidateVanity(context.Background(), s)
		require.ErrorIs(t, err, ErrReserved, s)
		assert.Equal(t, "'"+strings.ToLower(s)+"' is a reserved word", err.Error())
	}

	// без опции слово маршрута свободно
	assert.NoError(t, New(takenSet{}).ValidateVanity(context.Background(), "ping"))
}

func TestSuggest_SkipsRouteWords(t *testing.T) {
	g := New(takenSet{"pin": true}, WithReserved("pin1"))

	got, err := g.Suggest(context.Background(), "pin", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"pin2", "pin3"}, got)
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("Dashboard"))
	assert.True(t, IsReserved(" stats "))
	assert.False(t, IsReserved("my-dashboard"))
}

// === Варианты для занятого слага ===

func TestSuggest_NumericFirst(t *testing.T) {
	g := New(takenSet{"test": true})

	got, err := g.Suggest(context.Background(), "test", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"test1", "test2", "test3"}, got)
}

func TestSuggest_DefaultCount(t *testing.T) {
	got, err := New(takenSet{}).Suggest(context.Background(), "promo", 0)

	require.NoError(t, err)
	assert.Len(t, got, DefaultSuggestions)
}

func TestSuggest_FallsBackToRandomSuffix(t *testing.T) {
	taken := takenSet{"test": true, "test1": true, "test2": true, "test3": true}
	g := New(taken)

	got, err := g.Suggest(context.Background(), "test", 3)

	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := make(map[string]bool)
	for _, s := range got {
		assert.Contains(t, s, "test")
		assert.Regexp(t, `^test-[1-9][0-9]$`, s)
		assert.False(t, taken[s])
		assert.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}
}

func TestSuggest_MixedOrder(t *testing.T) {
	g := New(takenSet{"go2": true})

	got, err := g.Suggest(context.Background(), "go", 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "go1", got[0])
	assert.Equal(t, "go3", got[1])
	assert.Regexp(t, `^go-[0-9]{2}$`, got[2])
}

func TestSuggest_LongBaseFitsLimit(t *testing.T) {
	desired := strings.Repeat("a", 50)

	got, err := New(takenSet{}).Suggest(context.Background(), desired, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.LessOrEqual(t, len(s), MaxVanityLength)
		assert.True(t, strings.HasPrefix(s, strings.Repeat("a", 47)+"-"))
	}
}

func TestSuggest_Exhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	oracle.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	got, err := New(oracle, WithMaxAttempts(10)).Suggest(context.Background(), "busy", 3)

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Empty(t, got)
}

func TestSuggest_OracleError(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	dbErr := errors.New("db down")
	oracle.EXPECT().Exists(gomock.Any(), "x1").Return(false, dbErr)

	_, err := New(oracle).Suggest(context.Background(), "x", 3)

	assert.ErrorIs(t, err, dbErr)
}

func TestVanityError_Code(t *testing.T) {
	g := New(takenSet{"taken": true})
	ctx := context.Background()

	cases := map[string]string{
		"ab":      "slug_too_short",
		"bad!":    "slug_invalid_chars",
		"admin":   "slug_reserved",
		"taken":   "slug_taken",
		strings.Repeat("a", MaxVanityLength+1): "slug_too_long",
	}
	for in, code := range cases {
		var ve *VanityError
		require.ErrorAs(t, g.ValidateVanity(ctx, in), &ve, in)
		assert.Equal(t, code, ve.Code(), in)
	}
}
