package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     Role
		required Permission
		want     bool
	}{
		{"has exact", Role{PermissionEmbedLinks}, PermissionEmbedLinks, true},
		{"missing", Role{PermissionSendMessages}, PermissionEmbedLinks, false},
		{"admin override", Role{PermissionAdministrator}, PermissionManageMessages, true},
		{"combined required", Role{PermissionSendMessages}, PermissionSendMessages | PermissionEmbedLinks, false},
		{"none required", Role{}, PermissionNone, true},
		{"empty role", Role{}, PermissionSendMessages, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Allowed(tt.role, tt.required))
		})
	}
}

func TestPermissionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Embed Links", PermissionEmbedLinks.String())
	assert.Equal(t, "Send Messages, Embed Links", (PermissionSendMessages | PermissionEmbedLinks).String())
	assert.Equal(t, "None", PermissionNone.String())
}

func TestChatMemberRole(t *testing.T) {
	t.Parallel()

	yes, no := true, false

	assert.True(t, Allowed((&ChatMember{Status: "creator"}).Role(), PermissionManageMessages))
	assert.True(t, Allowed((&ChatMember{Status: "member"}).Role(), PermissionEmbedLinks))
	assert.False(t, Allowed((&ChatMember{Status: "left"}).Role(), PermissionSendMessages))

	restricted := &ChatMember{Status: "restricted", CanSendMessages: &yes, CanAddWebPagePreviews: &no}
	assert.True(t, Allowed(restricted.Role(), PermissionSendMessages))
	assert.False(t, Allowed(restricted.Role(), PermissionEmbedLinks))

	admin := &ChatMember{Status: "administrator", CanDeleteMessages: &yes}
	assert.True(t, Allowed(admin.Role(), PermissionManageMessages))
	assert.False(t, Allowed(admin.Role(), PermissionPinMessages))
}
