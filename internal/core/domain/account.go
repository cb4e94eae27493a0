package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role identifies what an account is allowed to do on the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
	RoleSales     Role = "sales"
	RoleFinance   Role = "finance"
	RoleInvestor  Role = "investor"
	RolePartner   Role = "partner"
	RoleDeveloper Role = "developer"
)

// Roles returns the closed set of valid roles in a stable order. Validation
// and the role-counts query both consult this list rather than any storage
// schema.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleClient,
		RoleSales,
		RoleFinance,
		RoleInvestor,
		RolePartner,
		RoleDeveloper,
	}
}

const (
	// MaxFullNameLen bounds the fullName field.
	MaxFullNameLen = 50
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 6
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// NormalizeEmail lowercases and trims an email address. All lookups and
// stored values use the normalized form, making uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the (already normalized) address matches the
// accepted email shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Account models a registered actor on the platform. PasswordHash is never
// serialized to clients.
type Account struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"createdAt"`
}
