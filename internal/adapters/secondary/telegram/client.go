package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	ports "github.com/admin/tg-bots/dose-bot/internal/ports/telegram"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	apiTimeout         = 30 * time.Second
	// maxInlineResults ограничение Telegram на answerInlineQuery
	maxInlineResults = 50
)

// Client клиент для работы с Telegram Bot API
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

var _ ports.IClient = (*Client)(nil)

// NewClient создаёт новый клиент для Telegram Bot API
func NewClient(token string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		baseURL: telegramAPIBaseURL + token,
		log:     log,
	}
}

// call POST запрос к методу Bot API. result может быть nil, если ответ не нужен
func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	return c.callWith(ctx, c.httpClient, method, payload, result)
}

func (c *Client) callWith(ctx context.Context, httpClient *http.Client, method string, payload any, result any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to telegram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp struct {
		APIResponse
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.log.Error("failed to unmarshal response",
			"error", err,
			"method", method,
			"status_code", resp.StatusCode,
			"body", string(body),
		)
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !apiResp.OK {
		c.log.Error("telegram API returned error",
			"method", method,
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
			"status_code", resp.StatusCode,
		)
		apiErr := &APIError{Method: method, Code: apiResp.ErrorCode, Description: apiResp.Description}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// ReplyParameters ответ на конкретное сообщение
type ReplyParameters struct {
	MessageID                int64 `json:"message_id"`
	AllowSendingWithoutReply bool  `json:"allow_sending_without_reply,omitempty"`
}

// LinkPreviewOptions превью ссылки; через URL показываем картинку вещества
type LinkPreviewOptions struct {
	IsDisabled       bool   `json:"is_disabled,omitempty"`
	URL              string `json:"url,omitempty"`
	PreferLargeMedia bool   `json:"prefer_large_media,omitempty"`
	ShowAboveText    bool   `json:"show_above_text,omitempty"`
}

// SendMessageRequest запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID             int64                        `json:"chat_id"`
	MessageThreadID    int64                        `json:"message_thread_id,omitempty"`
	Text               string                       `json:"text"`
	ParseMode          string                       `json:"parse_mode,omitempty"` // "HTML", "Markdown", "MarkdownV2"
	ReplyParameters    *ReplyParameters             `json:"reply_parameters,omitempty"`
	LinkPreviewOptions *LinkPreviewOptions          `json:"link_preview_options,omitempty"`
	ReplyMarkup        *domain.InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessageResult результат отправки сообщения
type SendMessageResult struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Date int64 `json:"date"`
}

// SendMessage отправляет HTML-сообщение и возвращает message_id
func (c *Client) SendMessage(ctx context.Context, msg domain.OutgoingMessage) (int64, error) {
	req := SendMessageRequest{
		ChatID:             msg.ChatID,
		MessageThreadID:    msg.ThreadID,
		Text:               msg.Text,
		ParseMode:          "HTML",
		LinkPreviewOptions: previewOptions(msg.PreviewURL),
		ReplyMarkup:        msg.Keyboard,
	}
	if msg.ReplyToMessageID != 0 {
		req.ReplyParameters = &ReplyParameters{MessageID: msg.ReplyToMessageID, AllowSendingWithoutReply: true}
	}

	var result SendMessageResult
	if err := c.call(ctx, "sendMessage", req, &result); err != nil {
		return 0, err
	}

	c.log.Debug("message sent successfully",
		"chat_id", msg.ChatID,
		"message_id", result.MessageID,
	)
	return result.MessageID, nil
}

type editMessageTextRequest struct {
	ChatID             int64                        `json:"chat_id"`
	MessageID          int64                        `json:"message_id"`
	Text               string                       `json:"text"`
	ParseMode          string                       `json:"parse_mode"`
	LinkPreviewOptions *LinkPreviewOptions          `json:"link_preview_options,omitempty"`
	ReplyMarkup        *domain.InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText заменяет текст и клавиатуру ранее отправленного сообщения
func (c *Client) EditMessageText(ctx context.Context, ref domain.MessageRef, msg domain.OutgoingMessage) error {
	req := editMessageTextRequest{
		ChatID:             ref.ChatID,
		MessageID:          ref.MessageID,
		Text:               msg.Text,
		ParseMode:          "HTML",
		LinkPreviewOptions: previewOptions(msg.PreviewURL),
		ReplyMarkup:        msg.Keyboard,
	}

	err := c.call(ctx, "editMessageText", req, nil)
	if IsNotModified(err) {
		// повторное нажатие на крайней странице
		return nil
	}
	return err
}

func previewOptions(url string) *LinkPreviewOptions {
	if url == "" {
		return &LinkPreviewOptions{IsDisabled: true}
	}
	return &LinkPreviewOptions{URL: url, PreferLargeMedia: true, ShowAboveText: true}
}

type inlineQueryResultArticle struct {
	Type                string              `json:"type"`
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	Description         string              `json:"description,omitempty"`
	InputMessageContent inputMessageContent `json:"input_message_content"`
}

type inputMessageContent struct {
	MessageText string `json:"message_text"`
}

type answerInlineQueryRequest struct {
	InlineQueryID string                     `json:"inline_query_id"`
	Results       []inlineQueryResultArticle `json:"results"`
	CacheTime     int                        `json:"cache_time"`
	IsPersonal    bool                       `json:"is_personal"`
}

// AnswerInlineQuery варианты автодополнения; при выборе в чат уходит Value
func (c *Client) AnswerInlineQuery(ctx context.Context, queryID string, suggestions []domain.Suggestion) error {
	if len(suggestions) > maxInlineResults {
		suggestions = suggestions[:maxInlineResults]
	}

	results := make([]inlineQueryResultArticle, len(suggestions))
	for i, s := range suggestions {
		results[i] = inlineQueryResultArticle{
			Type:                "article",
			ID:                  fmt.Sprintf("%d", i),
			Title:               s.Name,
			InputMessageContent: inputMessageContent{MessageText: s.Value},
		}
	}

	return c.call(ctx, "answerInlineQuery", answerInlineQueryRequest{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     60,
		IsPersonal:    false,
	}, nil)
}

// GetChatMember статус и права участника чата
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*domain.ChatMember, error) {
	req := struct {
		ChatID int64 `json:"chat_id"`
		UserID int64 `json:"user_id"`
	}{ChatID: chatID, UserID: userID}

	var member domain.ChatMember
	if err := c.call(ctx, "getChatMember", req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMe получает информацию о боте
func (c *Client) GetMe(ctx context.Context) (*domain.TelegramUser, error) {
	var me domain.TelegramUser
	if err := c.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return nil, err
	}

	c.log.Info("bot info retrieved successfully", "bot_id", me.ID)
	return &me, nil
}

// SetMyCommands регистрирует команды бота в меню
func (c *Client) SetMyCommands(ctx context.Context, commands []domain.BotCommand) error {
	reqBody := struct {
		Commands []domain.BotCommand `json:"commands"`
	}{
		Commands: commands,
	}

	if err := c.call(ctx, "setMyCommands", reqBody, nil); err != nil {
		return err
	}

	c.log.Info("bot commands registered successfully", "commands_count", len(commands))
	return nil
}
