package auth

import "github.com/spec-kit/lottery-auth/internal/domain"

// Allows reports whether a principal holding role may access an endpoint requiring required.
// moderator endpoints admit admins, admin endpoints admit only admins and user endpoints admit
// any authenticated role.
func Allows(required, role domain.Role) bool {
	switch required {
	case domain.RoleAdmin:
		return role == domain.RoleAdmin
	case domain.RoleModerator:
		return role == domain.RoleModerator || role == domain.RoleAdmin
	default:
		return role.Valid()
	}
}
