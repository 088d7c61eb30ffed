package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// UserRef идентичность пользователя платформы
type UserRef struct {
	ID       int64
	Name     string
	Username string
}

// Mention разметка упоминания, транспорт превращает её в ссылку на пользователя
func (u UserRef) Mention() string {
	if u.Name == "" {
		return fmt.Sprintf("<@%d>", u.ID)
	}
	return fmt.Sprintf("<@%d|%s>", u.ID, PlainText(u.Name))
}

// Tag подпись пользователя для футеров
func (u UserRef) Tag() string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.Name != "":
		return u.Name
	default:
		return fmt.Sprintf("id%d", u.ID)
	}
}

// Interaction входящее событие вызова команды, не зависит от платформы
type Interaction struct {
	ID         string
	Command    string
	Subcommand string
	User       UserRef
	ChatID     int64
	Private    bool
	MessageID  int64
	RawArgs    []string
	ReplyTo    *UserRef
	Args       Args
	ReceivedAt time.Time
}

// AutocompleteEvent частично набранное значение аргумента
type AutocompleteEvent struct {
	ID      string
	Command string
	User    UserRef
	Partial string
}

// Suggestion вариант автодополнения, отображаемый текст совпадает со значением
type Suggestion struct {
	Name  string
	Value string
}

// Args провалидированные значения аргументов
type Args map[string]any

func (a Args) String(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

func (a Args) Int(name string) (int64, bool) {
	v, ok := a[name].(int64)
	return v, ok
}

func (a Args) Decimal(name string) (decimal.Decimal, bool) {
	v, ok := a[name].(decimal.Decimal)
	return v, ok
}

func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

func (a Args) User(name string) (UserRef, bool) {
	v, ok := a[name].(UserRef)
	return v, ok
}

// MessageRef отправленное сообщение, ключ состояния пагинации
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

func (r MessageRef) Key() string {
	return fmt.Sprintf("%d:%d", r.ChatID, r.MessageID)
}
