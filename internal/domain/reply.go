package domain

import (
	"strings"
	"time"
)

type ReplyKind int

const (
	ReplyDefault ReplyKind = iota
	ReplySuccess
	ReplyError
)

// Field пара заголовок/значение внутри ответа
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Button кнопка под сообщением: ссылка (URL) или callback (Data)
type Button struct {
	Text string
	URL  string
	Data string
}

// Reply исходящий ответ. Ephemeral виден только вызвавшему пользователю
type Reply struct {
	Kind        ReplyKind
	Title       string
	Description string
	Fields      []Field
	Footer      string
	Timestamp   *time.Time
	ImageURL    string
	Buttons     [][]Button
	Ephemeral   bool
}

func ErrorReply(text string) Reply {
	return Reply{Kind: ReplyError, Description: "❌ " + text, Ephemeral: true}
}

func SuccessReply(text string) Reply {
	return Reply{Kind: ReplySuccess, Description: "✅ " + text}
}

func DefaultReply(text string) Reply {
	return Reply{Kind: ReplyDefault, Description: text}
}

// GenericErrorText ответ на транспортные ошибки, причина пользователю не показывается
const GenericErrorText = "Something went wrong, please try again later."

var plainTextReplacer = strings.NewReplacer("<", "‹", ">", "›", "](", "] (")

// PlainText гасит разметку упоминаний и ссылок в пользовательском тексте перед вставкой в ответ
func PlainText(s string) string {
	return plainTextReplacer.Replace(s)
}
