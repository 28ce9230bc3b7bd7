package models

// Role is the closed set of authorization roles a user can hold.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// In checks r against an endpoint's allow-list.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

type User struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // don’t expose hash
	RefreshToken *string `json:"-"` // stored for revocation only
	Avatar       *string `json:"avatar,omitempty"`
	Role         Role    `json:"role"`
	Confirmed    bool    `json:"confirmed"`
}
