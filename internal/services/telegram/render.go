package telegram

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

var (
	mentionPattern = regexp.MustCompile(`<@(\d+)(?:\|([^>]*))?>`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	underPattern   = regexp.MustCompile(`__(.+?)__`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
)

const timestampLayout = "Jan 2, 2006 15:04 MST"

// RenderHTML переводит платформенно-независимый ответ в HTML для parse_mode=HTML.
// Текст ответа использует лёгкую разметку: **жирный**, __подчёркнутый__, `код`,
// [текст](url) и упоминания <@id|Имя>
func RenderHTML(reply domain.Reply) string {
	var parts []string

	if reply.Title != "" {
		parts = append(parts, "<b>"+inline(reply.Title)+"</b>")
	}
	if reply.Description != "" {
		parts = append(parts, inline(reply.Description))
	}
	for _, field := range reply.Fields {
		parts = append(parts, fmt.Sprintf("<b>%s</b>\n%s", inline(field.Name), inline(field.Value)))
	}

	var footer []string
	if reply.Footer != "" {
		footer = append(footer, html.EscapeString(reply.Footer))
	}
	if reply.Timestamp != nil {
		footer = append(footer, reply.Timestamp.UTC().Format(timestampLayout))
	}
	if len(footer) > 0 {
		parts = append(parts, "<i>"+strings.Join(footer, " • ")+"</i>")
	}

	return strings.Join(parts, "\n\n")
}

// Keyboard кнопки ответа в inline-клавиатуру; nil, если кнопок нет
func Keyboard(buttons [][]domain.Button) *domain.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}

	rows := make([][]domain.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		out := make([]domain.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			out = append(out, domain.InlineKeyboardButton{Text: b.Text, URL: b.URL, CallbackData: b.Data})
		}
		rows = append(rows, out)
	}
	return &domain.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// inline экранирует текст и разворачивает разметку; упоминания обрабатываются до экранирования
func inline(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range mentionPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(markup(text[last:m[0]]))

		id := text[m[2]:m[3]]
		name := "user " + id
		if m[4] >= 0 && m[5] > m[4] {
			name = text[m[4]:m[5]]
		}
		fmt.Fprintf(&b, `<a href="tg://user?id=%s">%s</a>`, id, html.EscapeString(name))
		last = m[1]
	}
	b.WriteString(markup(text[last:]))
	return b.String()
}

func markup(text string) string {
	text = html.EscapeString(text)
	text = linkPattern.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	text = underPattern.ReplaceAllString(text, "<u>$1</u>")
	text = codePattern.ReplaceAllString(text, "<code>$1</code>")
	return text
}
