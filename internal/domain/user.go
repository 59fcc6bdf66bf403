package domain

// Role is the authorization level carried by a user account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is an account record. An empty Salt marks a legacy unsalted digest.
type User struct {
	ID             string
	Username       string
	PasswordDigest string
	Salt           string
	Role           Role
}

// Legacy reports whether the stored digest predates salting.
func (u *User) Legacy() bool {
	return u.Salt == ""
}
