package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const maxDrugNameLength = 100

// границы десятичной записи: сравнение и округление decimal с огромной экспонентой
// разворачивают её в big.Int и занимают секунды
const (
	maxDecimalExponent = 18
	minDecimalExponent = -18
	maxDecimalDigits   = 36
)

// MaxAmount верхняя граница дозы
var MaxAmount = decimal.New(1, 9)

// IsBoundedDecimal проверяет запись числа без арифметики над ним, безопасно для любого ввода
func IsBoundedDecimal(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxDecimalExponent && exp >= minDecimalExponent && d.NumDigits() <= maxDecimalDigits
}

// Unit единица измерения дозы
type Unit string

const (
	UnitMicrogram  Unit = "μg"
	UnitMilligram  Unit = "mg"
	UnitGram       Unit = "g"
	UnitMilliliter Unit = "mL"
	UnitDrinks     Unit = "drinks"
	UnitOther      Unit = "other"
)

// Units порядок совпадает с порядком вариантов в команде
var Units = []Unit{UnitMicrogram, UnitMilligram, UnitGram, UnitMilliliter, UnitDrinks, UnitOther}

var unitAliases = map[string]Unit{
	"ug":  UnitMicrogram,
	"mcg": UnitMicrogram,
}

func (u Unit) String() string {
	return string(u)
}

func (u Unit) IsValid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit регистронезависимый разбор единицы, понимает ug/mcg
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	for _, known := range Units {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	if u, ok := unitAliases[strings.ToLower(s)]; ok {
		return u, nil
	}
	return "", NewValidationError("units", "unknown unit %q", s)
}

// Route способ употребления
type Route string

const (
	RouteOral        Route = "oral"
	RouteSmoked      Route = "smoked"
	RouteInsufflated Route = "insufflated"
	RouteRectal      Route = "rectal"
	RouteIntravenous Route = "intravenous"
	RouteOther       Route = "other"
)

var Routes = []Route{RouteOral, RouteSmoked, RouteInsufflated, RouteRectal, RouteIntravenous, RouteOther}

func (r Route) String() string {
	return string(r)
}

func (r Route) Label() string {
	return capitalize(string(r))
}

func (r Route) IsValid() bool {
	for _, known := range Routes {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	for _, known := range Routes {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", NewValidationError("route", "unknown route %q", s)
}

// Entry одна записанная доза. После создания не меняется
type Entry struct {
	Drug       string
	Amount     decimal.Decimal
	Unit       Unit
	Route      Route
	RecordedAt time.Time
}

// NewEntry валидирует аргументы и фиксирует время записи в UTC
func NewEntry(drug string, amount decimal.Decimal, unit Unit, route Route, recordedAt time.Time) (Entry, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return Entry{}, NewValidationError("drug", "drug name must not be empty")
	}
	if utf8.RuneCountInString(drug) > maxDrugNameLength {
		return Entry{}, NewValidationError("drug", "drug name must be at most %d characters", maxDrugNameLength)
	}
	if strings.ContainsAny(drug, "<>") {
		return Entry{}, NewValidationError("drug", "drug name must not contain < or >")
	}
	if !IsBoundedDecimal(amount) || amount.GreaterThan(MaxAmount) {
		return Entry{}, NewValidationError("dose", "dose must be at most %s", FormatAmount(MaxAmount))
	}
	if amount.IsNegative() {
		return Entry{}, NewValidationError("dose", "dose must not be negative")
	}
	if !unit.IsValid() {
		return Entry{}, NewValidationError("units", "unknown unit %q", unit)
	}
	if !route.IsValid() {
		return Entry{}, NewValidationError("route", "unknown route %q", route)
	}

	return Entry{
		Drug:       drug,
		Amount:     amount,
		Unit:       unit,
		Route:      route,
		RecordedAt: recordedAt.UTC(),
	}, nil
}

// Equal сравнивает записи по значению (decimal и time нельзя сравнивать через ==)
func (e Entry) Equal(other Entry) bool {
	return e.Drug == other.Drug &&
		e.Amount.Equal(other.Amount) &&
		e.Unit == other.Unit &&
		e.Route == other.Route &&
		e.RecordedAt.Equal(other.RecordedAt)
}

// FormattedAmount сумма с разделителями разрядов и не более чем двумя знаками после точки
func (e Entry) FormattedAmount() string {
	return FormatAmount(e.Amount)
}

// Dose например "100 mg"
func (e Entry) Dose() string {
	return fmt.Sprintf("%s %s", e.FormattedAmount(), e.Unit)
}

// String например "Caffeine 100 mg (Oral)"
func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%s)", PlainText(e.Drug), e.Dose(), e.Route.Label())
}

func FormatAmount(amount decimal.Decimal) string {
	return humanize.Commaf(amount.RoundBank(2).InexactFloat64())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
