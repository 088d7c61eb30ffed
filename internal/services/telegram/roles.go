package telegram

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
	"github.com/admin/tg-bots/dose-bot/internal/ports/telegram"
)

// в личке бот может писать, а пользователь - хозяин чата
var (
	privateBotRole  = domain.Role{Permissions: domain.PermissionSendMessages | domain.PermissionEmbedLinks}
	privateUserRole = domain.Role{Permissions: domain.PermissionAdministrator}
)

// RoleResolver права через getChatMember
type RoleResolver struct {
	Client telegram.IClient
	botID  int64
}

func NewRoleResolver(client telegram.IClient, botID int64) *RoleResolver {
	return &RoleResolver{Client: client, botID: botID}
}

var _ service.IRoleResolver = (*RoleResolver)(nil)

func (r *RoleResolver) BotRole(ctx context.Context, chatID int64) (domain.Role, error) {
	if isPrivateChat(chatID) {
		return privateBotRole, nil
	}
	return r.memberRole(ctx, chatID, r.botID)
}

func (r *RoleResolver) UserRole(ctx context.Context, chatID, userID int64) (domain.Role, error) {
	if isPrivateChat(chatID) {
		return privateUserRole, nil
	}
	return r.memberRole(ctx, chatID, userID)
}

func (r *RoleResolver) memberRole(ctx context.Context, chatID, userID int64) (domain.Role, error) {
	member, err := r.Client.GetChatMember(ctx, chatID, userID)
	if err != nil {
		return domain.Role{}, fmt.Errorf("failed to get chat member: %w", err)
	}
	return member.Role(), nil
}

// isPrivateChat у личных чатов положительный id, у групп и каналов отрицательный
func isPrivateChat(chatID int64) bool {
	return chatID > 0
}
