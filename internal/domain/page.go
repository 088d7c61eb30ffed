package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultPageSize записей на одной странице лога
const DefaultPageSize = 5

// TimestampStyle политика отображения времени записи
type TimestampStyle string

const (
	// TimestampAbsolute "January 2nd - 3:04 PM"
	TimestampAbsolute TimestampStyle = "absolute"
	// TimestampRelative "3 days ago"
	TimestampRelative TimestampStyle = "relative"
)

func (s TimestampStyle) IsValid() bool {
	return s == TimestampAbsolute || s == TimestampRelative
}

// TimestampPolicy форматирует время записи для конкретного отображения
type TimestampPolicy struct {
	Style    TimestampStyle
	Location *time.Location
	// Now точка отсчёта для относительного формата
	Now time.Time
}

func (p TimestampPolicy) Format(t time.Time) string {
	if p.Style == TimestampRelative {
		now := p.Now
		if now.IsZero() {
			now = time.Now()
		}
		return humanize.RelTime(t, now, "ago", "from now")
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Format("January 2") + daySuffix(local.Day()) + local.Format(" - 3:04 PM")
}

func daySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// RenderOptions настраиваемая часть рендера
type RenderOptions struct {
	PageSize   int
	Timestamps TimestampPolicy
}

// PageLine одна запись на странице
type PageLine struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

func (l PageLine) String() string {
	return fmt.Sprintf("[%d] %s — %s", l.ID, l.Timestamp, l.Text)
}

// Page готовая к показу страница лога, неизменяемое значение
type Page struct {
	Title  string     `json:"title"`
	Owner  UserRef    `json:"owner"`
	Number int        `json:"number"`
	Count  int        `json:"count"`
	Lines  []PageLine `json:"lines"`
}

// Reply ответ с содержимым страницы, без кнопок навигации
func (p Page) Reply() Reply {
	lines := make([]string, len(p.Lines))
	for i, line := range p.Lines {
		lines[i] = line.String()
	}

	footer := p.Owner.Tag()
	if p.Count > 1 {
		footer = fmt.Sprintf("%s • Page %d/%d", footer, p.Number, p.Count)
	}

	return Reply{
		Title:       p.Title,
		Description: strings.Join(lines, "\n"),
		Footer:      footer,
	}
}

// RenderPages разбивает записи года на страницы.
// Записи идут от новых к старым, ID считается от старых (самая старая = 1).
// Всегда возвращает хотя бы одну страницу.
func RenderPages(owner UserRef, year string, entries []Entry, opts RenderOptions) []Page {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	count := (len(entries) + pageSize - 1) / pageSize
	if count == 0 {
		count = 1
	}

	title := fmt.Sprintf("Dose Log (%s)", year)
	pages := make([]Page, 0, count)
	current := Page{Title: title, Owner: owner, Number: 1, Count: count}

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		current.Lines = append(current.Lines, PageLine{
			ID:        i + 1,
			Timestamp: opts.Timestamps.Format(entry.RecordedAt),
			Text:      entry.String(),
		})

		if len(current.Lines) == pageSize && i > 0 {
			pages = append(pages, current)
			current = Page{Title: title, Owner: owner, Number: len(pages) + 1, Count: count}
		}
	}

	return append(pages, current)
}

// PaginationState состояние навигации по страницам одного сообщения
type PaginationState struct {
	Owner int64  `json:"owner"`
	Pages []Page `json:"pages"`
	Index int    `json:"index"`
}

// Clamp индекс после сдвига, без перехода по кругу
func Clamp(index, delta, count int) int {
	next := index + delta
	if next < 0 {
		return 0
	}
	if next > count-1 {
		return count - 1
	}
	return next
}
