package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"0", "0"},
		{"1.5", "1.5"},
		{"1.50", "1.5"},
		{"0.125", "0.12"},
		{"0.135", "0.14"},
		{"1234.567", "1,234.57"},
		{"1000000", "1,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestEntryString(t *testing.T) {
	t.Parallel()

	entry, err := NewEntry("Caffeine", decimal.NewFromInt(100), UnitMilligram, RouteOral, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Caffeine 100 mg (Oral)", entry.String())
	assert.Equal(t, "100 mg", entry.Dose())
}

func TestNewEntry_Validation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3*3600))

	_, err := NewEntry("  ", decimal.NewFromInt(1), UnitGram, RouteOral, now)
	assert.True(t, IsValidationError(err))

	_, err = NewEntry("LSD", decimal.NewFromInt(-1), UnitMicrogram, RouteOral, now)
	assert.True(t, IsValidationError(err))

	_, err = NewEntry("LSD", decimal.NewFromInt(1), Unit("kg"), RouteOral, now)
	assert.True(t, IsValidationError(err))

	_, err = NewEntry("LSD", decimal.NewFromInt(1), UnitMicrogram, Route("ocular"), now)
	assert.True(t, IsValidationError(err))

	entry, err := NewEntry(" LSD ", decimal.NewFromInt(100), UnitMicrogram, RouteOral, now)
	require.NoError(t, err)
	assert.Equal(t, "LSD", entry.Drug)
	assert.Equal(t, time.UTC, entry.RecordedAt.Location())
	assert.True(t, entry.RecordedAt.Equal(now))
}

func TestNewEntry_AmountBounds(t *testing.T) {
	t.Parallel()

	now := time.Now()

	for _, raw := range []string{"1e400", "1e20000000", "1e-400", "1000000001"} {
		t.Run(raw, func(t *testing.T) {
			amount, err := decimal.NewFromString(raw)
			require.NoError(t, err)

			_, err = NewEntry("Caffeine", amount, UnitMilligram, RouteOral, now)
			assert.True(t, IsValidationError(err))
		})
	}

	entry, err := NewEntry("Caffeine", MaxAmount, UnitMilligram, RouteOral, now)
	require.NoError(t, err)
	assert.Equal(t, "1,000,000,000 mg", entry.Dose())
}

func TestNewEntry_RejectsMentionMarkup(t *testing.T) {
	t.Parallel()

	_, err := NewEntry("<@123|Admin>", decimal.NewFromInt(1), UnitMilligram, RouteOral, time.Now())
	require.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "must not contain")

	stored := Entry{Drug: "<@123|Admin> [x](https://evil.example)", Amount: decimal.NewFromInt(1), Unit: UnitMilligram, Route: RouteOral}
	assert.Equal(t, "‹@123|Admin› [x] (https://evil.example) 1 mg (Oral)", stored.String())
}

func TestMention_NameCannotCloseMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<@5|Eve>", UserRef{ID: 5, Name: "Eve"}.Mention())
	assert.Equal(t, "<@5|Eve›‹@1|Admin›>", UserRef{ID: 5, Name: "Eve><@1|Admin>"}.Mention())
}

func TestIsBoundedDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"0.125", true},
		{"123456789012345678", true},
		{"1e18", true},
		{"1e19", false},
		{"1e-19", false},
		{"1e20000000", false},
		{"1234567890123456789012345678901234567", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBoundedDecimal(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParseUnitAndRoute(t *testing.T) {
	t.Parallel()

	u, err := ParseUnit("MG")
	require.NoError(t, err)
	assert.Equal(t, UnitMilligram, u)

	u, err = ParseUnit("mcg")
	require.NoError(t, err)
	assert.Equal(t, UnitMicrogram, u)

	u, err = ParseUnit("ml")
	require.NoError(t, err)
	assert.Equal(t, UnitMilliliter, u)

	_, err = ParseUnit("bowls")
	assert.True(t, IsValidationError(err))

	r, err := ParseRoute("Insufflated")
	require.NoError(t, err)
	assert.Equal(t, RouteInsufflated, r)
	assert.Equal(t, "Insufflated", r.Label())
}

func TestEntryEqual(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := NewEntry("DMT", decimal.RequireFromString("30.0"), UnitMilligram, RouteSmoked, at)
	b, _ := NewEntry("DMT", decimal.RequireFromString("30"), UnitMilligram, RouteSmoked, at.In(time.Local))
	c, _ := NewEntry("DMT", decimal.RequireFromString("30"), UnitMilligram, RouteSmoked, at.Add(time.Second))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
