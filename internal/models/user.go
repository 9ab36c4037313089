package models

import "github.com/golang-jwt/jwt/v5"

// Role is an ordered capability level. Comparisons go through AtLeast so
// role ordering lives in one place instead of scattered integer checks.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleParent    Role = "PARENT"
	RoleTeacher   Role = "TEACHER"
	RolePrincipal Role = "PRINCIPAL"
	RoleAdmin     Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleStudent:   1,
	RoleParent:    2,
	RoleTeacher:   3,
	RolePrincipal: 4,
	RoleAdmin:     5,
}

// Valid reports whether the role is a known capability level.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants at least the given capability.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// User is a directory record; ownership of user data is external, the
// core only needs existence and role.
type User struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Role    Role   `db:"role" json:"role"`
	Deleted bool   `db:"deleted" json:"-"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
