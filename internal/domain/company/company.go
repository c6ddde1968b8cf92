// Package company models a tenant account holding BlueStakes API credentials.
package company

import (
	"strings"
	"time"
)

// Company is a tenant with its own BlueStakes credentials. The Token fields
// are owned exclusively by the token cache; no other component writes them.
type Company struct {
	ID                uint
	Name              string
	Username          string
	EncryptedPassword string
	Token             *string
	TokenExpiresAt    *time.Time
}

// SyncEligible reports whether the company can participate in ticket sync.
// Both username and stored password must be non-empty.
func (c *Company) SyncEligible() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.EncryptedPassword) != ""
}

// Credentials carries a company's decrypted BlueStakes login.
type Credentials struct {
	CompanyID uint
	Username  string
	Password  string
}

// TokenState is a read-only view of a company's cached token lifetime,
// used for cache statistics.
type TokenState struct {
	CompanyID uint
	ExpiresAt *time.Time
}
