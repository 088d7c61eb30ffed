package domain

import (
	"sort"
	"strconv"
	"time"
)

// MinYear первый год, за который принимаются записи
const MinYear = 2023

// YearLabel ключ годовой корзины в логе, всегда четыре цифры
func YearLabel(year int) string {
	return strconv.Itoa(year)
}

// CurrentYear год по UTC
func CurrentYear(now time.Time) string {
	return YearLabel(now.UTC().Year())
}

// ParseYear проверяет, что год четырёхзначный и не раньше MinYear
func ParseYear(s string) (string, error) {
	year, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		return "", NewValidationError("year", "year must be a 4-digit number")
	}
	if year < MinYear {
		return "", NewValidationError("year", "year must be %d or later", MinYear)
	}
	return s, nil
}

// DoseLog лог одного пользователя: год -> записи в порядке добавления (старые первыми)
type DoseLog struct {
	UserID int64
	Doses  map[string][]Entry
}

// Entries записи за год; пустая корзина и отсутствующая неразличимы
func (l *DoseLog) Entries(year string) []Entry {
	if l == nil {
		return nil
	}
	return l.Doses[year]
}

// HasYear true, если за год есть хотя бы одна запись
func (l *DoseLog) HasYear(year string) bool {
	return len(l.Entries(year)) > 0
}

// IsEmpty true, если ни в одной корзине нет записей
func (l *DoseLog) IsEmpty() bool {
	if l == nil {
		return true
	}
	for _, entries := range l.Doses {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// Years непустые годы по возрастанию
func (l *DoseLog) Years() []string {
	if l == nil {
		return nil
	}
	years := make([]string, 0, len(l.Doses))
	for year, entries := range l.Doses {
		if len(entries) > 0 {
			years = append(years, year)
		}
	}
	sort.Strings(years)
	return years
}

// EntryByID запись по отображаемому ID (1 = самая старая)
func (l *DoseLog) EntryByID(year string, id int) (Entry, bool) {
	entries := l.Entries(year)
	if id < 1 || id > len(entries) {
		return Entry{}, false
	}
	return entries[id-1], true
}

// WithoutEntry копия корзины без записи с индексом index; если корзина опустела, возвращает nil
func WithoutEntry(entries []Entry, index int) []Entry {
	if index < 0 || index >= len(entries) {
		return entries
	}
	rest := make([]Entry, 0, len(entries)-1)
	rest = append(rest, entries[:index]...)
	rest = append(rest, entries[index+1:]...)
	if len(rest) == 0 {
		return nil
	}
	return rest
}

// ContainsEntry используется для семантики append-if-absent
func ContainsEntry(entries []Entry, entry Entry) bool {
	for _, e := range entries {
		if e.Equal(entry) {
			return true
		}
	}
	return false
}
