package model

import "strings"

// Well-known roles. The role set is open: the backend may mint others,
// and gating only ever checks membership in an allow-list.
const (
	RoleAdmin     = "Admin"
	RoleEngineer  = "Ingeniero"
	RoleInspector = "Inspector"
)

// User is the identity derived from the session token claims. It is never
// fetched from the backend; the token payload is the single source.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	PayrollNumber string `json:"payrollNumber,omitempty"`
}

// HasRole reports whether the user's role matches any of the given roles,
// case-insensitively. A nil user never matches.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}

	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role), u.Role) {
			return true
		}
	}

	return false
}

// DirectoryUser is a backend user record as listed on the user admin page.
type DirectoryUser struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	PayrollNumber string `json:"payrollNumber"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	PayrollNumber string `json:"payRollNumber"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
