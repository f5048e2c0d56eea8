package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleFinance    Role = "FINANCE"
	RoleEmployee   Role = "EMPLOYEE"
	RoleGate       Role = "GATE"
)

var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleFinance, RoleEmployee, RoleGate}

// ParseRole normalizes s to the canonical upper-case role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

type AdminUser struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	PhoneNumber    string    `json:"phoneNumber"`
	Address        string    `json:"address"`
	LastLogin      time.Time `json:"lastLogin"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Identity is what an authenticated session resolves to.
type Identity struct {
	AdminID  string `json:"adminId,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
