package domain

import "time"

// Role enumerates the closed set of account roles. Keeping this a fixed
// two-variant type rules out free-form role strings slipping past the
// authorization gate.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for shop accounts. PasswordHash is nil for
// accounts created through a federated provider that never set a local
// password.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	Role         Role
	Provider     *string
	ProviderID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
