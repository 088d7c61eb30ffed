package domain

// дока - https://core.telegram.org/bots/api

// Update - входящее обновление от Telegram Bot API
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
	InlineQuery   *InlineQuery   `json:"inline_query,omitempty"`
}

// CallbackQuery - нажатие inline-кнопки
type CallbackQuery struct {
	ID      string        `json:"id"`
	From    *TelegramUser `json:"from,omitempty"`
	Message *Message      `json:"message,omitempty"`
	Data    *string       `json:"data,omitempty"` // данные callback кнопки
}

// InlineQuery - запрос "@bot текст", используем для автодополнения
type InlineQuery struct {
	ID     string        `json:"id"`
	From   *TelegramUser `json:"from"`
	Query  string        `json:"query"`
	Offset string        `json:"offset"`
}

// Message - сообщение от Telegram Bot API
type Message struct {
	MessageID      int64         `json:"message_id"`
	From           *TelegramUser `json:"from,omitempty"`     // отправитель (Telegram User)
	Chat           *Chat         `json:"chat"`               // чат
	Date           int64         `json:"date"`               // Unix timestamp
	Text           *string       `json:"text,omitempty"`     // текст сообщения
	Entities       []Entity      `json:"entities,omitempty"` // сущности (команды, упоминания и т.д.)
	ReplyToMessage *Message      `json:"reply_to_message,omitempty"`
}

// User - пользователя Telegram
type TelegramUser struct {
	ID           int64   `json:"id"`
	IsBot        bool    `json:"is_bot"`
	FirstName    string  `json:"first_name"`
	LastName     *string `json:"last_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"language_code,omitempty"`
}

// Ref идентичность пользователя для ядра
func (u *TelegramUser) Ref() UserRef {
	if u == nil {
		return UserRef{}
	}
	ref := UserRef{ID: u.ID, Name: u.FirstName}
	if u.LastName != nil && *u.LastName != "" {
		ref.Name += " " + *u.LastName
	}
	if u.Username != nil {
		ref.Username = *u.Username
	}
	return ref
}

// Chat - чат в Telegram
type Chat struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"` // "private", "group", "supergroup", "channel"
	Title     *string `json:"title,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

func (c *Chat) IsPrivate() bool {
	return c != nil && c.Type == "private"
}

// Entity - сущность в сообщении (команда, упоминание и т.д.)
type Entity struct {
	Type   string        `json:"type"`           // "bot_command", "mention", "text_mention" и т.д.
	Offset int           `json:"offset"`         // смещение в UTF-16 кодовых единицах
	Length int           `json:"length"`         // длина в UTF-16 кодовых единицах
	User   *TelegramUser `json:"user,omitempty"` // только для text_mention
}

// ChatMember - права участника (getChatMember)
type ChatMember struct {
	Status                string `json:"status"` // "creator", "administrator", "member", "restricted", "left", "kicked"
	CanSendMessages       *bool  `json:"can_send_messages,omitempty"`
	CanAddWebPagePreviews *bool  `json:"can_add_web_page_previews,omitempty"`
	CanDeleteMessages     *bool  `json:"can_delete_messages,omitempty"`
	CanPinMessages        *bool  `json:"can_pin_messages,omitempty"`
}

// Role переводит статус участника Telegram в набор прав ядра
func (m *ChatMember) Role() Role {
	if m == nil {
		return Role{}
	}

	switch m.Status {
	case "creator":
		return Role{Permissions: PermissionAdministrator}
	case "administrator":
		perms := PermissionSendMessages | PermissionEmbedLinks
		if isTrue(m.CanDeleteMessages) {
			perms |= PermissionManageMessages
		}
		if isTrue(m.CanPinMessages) {
			perms |= PermissionPinMessages
		}
		return Role{Permissions: perms}
	case "member":
		return Role{Permissions: PermissionSendMessages | PermissionEmbedLinks}
	case "restricted":
		var perms Permission
		if isTrue(m.CanSendMessages) {
			perms |= PermissionSendMessages
		}
		if isTrue(m.CanAddWebPagePreviews) {
			perms |= PermissionEmbedLinks
		}
		return Role{Permissions: perms}
	default:
		return Role{}
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

// InlineKeyboardMarkup - клавиатура под сообщением
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// BotCommand - пункт меню команд (setMyCommands)
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// OutgoingMessage отрендеренное сообщение, готовое к отправке
type OutgoingMessage struct {
	ChatID           int64
	ThreadID         int64 // топик форума, 0 - общий чат
	Text             string // HTML
	ReplyToMessageID int64
	PreviewURL       string
	Keyboard         *InlineKeyboardMarkup
}
