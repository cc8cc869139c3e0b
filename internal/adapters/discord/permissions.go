package discord

import "github.com/bwmarrin/discordgo"

// HasPermission mira los permisos ya calculados que Discord manda en member.permissions.
// Fuera de un guild no hay member y siempre es false.
func (b *Base) HasPermission(perm int64) bool {
	if b.Member == nil {
		return false
	}
	p := b.Member.Permissions
	if p&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return p&perm == perm
}

// AppHasPermission checks app_permissions, what the bot itself may do in the channel.
func (b *Base) AppHasPermission(perm int64) bool {
	if b.AppPermissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return b.AppPermissions&perm == perm
}

// IsAdmin: administrador por bit, o cualquiera de los roles explícitos.
func (b *Base) IsAdmin(adminRoleIDs ...string) bool {
	if b.HasPermission(discordgo.PermissionAdministrator) {
		return true
	}
	if b.Member == nil || len(adminRoleIDs) == 0 {
		return false
	}
	has := make(map[string]struct{}, len(b.Member.Roles))
	for _, rid := range b.Member.Roles {
		has[rid] = struct{}{}
	}
	for _, want := range adminRoleIDs {
		if _, ok := has[want]; ok {
			return true
		}
	}
	return false
}
