package domain

import "strings"

// Permission набор прав участника чата (битовая маска)
type Permission uint32

const (
	PermissionSendMessages Permission = 1 << iota
	PermissionEmbedLinks
	PermissionManageMessages
	PermissionPinMessages
	PermissionAdministrator
)

// PermissionNone команда не требует прав
const PermissionNone Permission = 0

var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermissionSendMessages, "Send Messages"},
	{PermissionEmbedLinks, "Embed Links"},
	{PermissionManageMessages, "Manage Messages"},
	{PermissionPinMessages, "Pin Messages"},
	{PermissionAdministrator, "Administrator"},
}

// Has true, если все биты required присутствуют
func (p Permission) Has(required Permission) bool {
	return p&required == required
}

func (p Permission) String() string {
	if p == PermissionNone {
		return "None"
	}
	var names []string
	for _, pn := range permissionNames {
		if p.Has(pn.perm) {
			names = append(names, pn.name)
		}
	}
	return strings.Join(names, ", ")
}

// Role эффективная роль участника (или бота) в конкретном чате
type Role struct {
	Permissions Permission
}

func (r Role) Has(required Permission) bool {
	return r.Permissions.Has(required)
}

// Allowed чистый предикат: право есть напрямую или через администратора
func Allowed(role Role, required Permission) bool {
	return role.Has(required) || role.Has(PermissionAdministrator)
}
