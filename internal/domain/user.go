package domain

// Role gates which controls a signed-in staff member sees.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// User is a staff credential record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	DisplayName  string
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
