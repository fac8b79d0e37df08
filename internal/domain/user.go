package domain

import "time"

// User roles, in descending order of privilege.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// ValidRole reports whether r is one of the known user roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// User is an application account. PasswordHash is only populated by the
// repository for credential checks and must never be serialized.
type User struct {
	ID           int64
	Email        string
	FullName     string
	FullNameKana *string
	Role         string
	Department   *string
	Title        *string
	Phone        *string
	IsActive     bool
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser holds the fields needed to create an account.
type CreateUser struct {
	Email        string
	Password     string
	FullName     string
	FullNameKana *string
	Role         string
	Department   *string
	Title        *string
	Phone        *string
}

// UpdateUser holds optional account updates. Role and IsActive may only
// be applied by admins; the service enforces that split.
type UpdateUser struct {
	FullName     *string
	FullNameKana *string
	Department   *string
	Title        *string
	Phone        *string
	Role         *string
	IsActive     *bool
}
