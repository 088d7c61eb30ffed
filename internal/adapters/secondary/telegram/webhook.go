package telegram

import "context"

type setWebhookRequest struct {
	URL                string   `json:"url"`
	SecretToken        string   `json:"secret_token,omitempty"`
	AllowedUpdates     []string `json:"allowed_updates"`
	DropPendingUpdates bool     `json:"drop_pending_updates"`
}

// AllowedUpdates типы обновлений, которые обрабатывает бот
var AllowedUpdates = []string{"message", "callback_query", "inline_query"}

// SetWebhook регистрирует webhook; Telegram будет присылать secret в X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	req := setWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: AllowedUpdates,
	}
	if err := c.call(ctx, "setWebhook", req, nil); err != nil {
		return err
	}

	c.log.Info("webhook registered", "url", url)
	return nil
}

// DeleteWebhook удаляет webhook (нужно вызывать отдельно перед запуском polling)
func (c *Client) DeleteWebhook(ctx context.Context) error {
	req := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{DropPendingUpdates: false}

	if err := c.call(ctx, "deleteWebhook", req, nil); err != nil {
		return err
	}

	c.log.Info("webhook deleted successfully")
	return nil
}
