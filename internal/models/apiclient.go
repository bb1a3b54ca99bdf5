package models

import (
	"strings"
	"time"
)

// APIClient represents an authenticated caller of the HTTP API
// (the SPA frontend, an HR integration, a test harness)
type APIClient struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	APIKey      string            `json:"-"` // never serialized
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	LastUsedAt  *time.Time        `json:"last_used_at,omitempty"`
	Permissions []string          `json:"permissions"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasPermission checks whether the client holds the required permission.
// Permissions are scoped strings like "candidates:write"; "candidates:*"
// grants every action in the scope and "*" grants everything.
func (c *APIClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	for _, perm := range c.Permissions {
		if perm == required || perm == "*" {
			return true
		}
		if strings.HasSuffix(perm, ":*") && strings.HasPrefix(required, strings.TrimSuffix(perm, "*")) {
			return true
		}
	}

	return false
}

// MaskedAPIKey returns a loggable prefix of the API key
func (c *APIClient) MaskedAPIKey() string {
	if len(c.APIKey) < 8 {
		return "***"
	}
	return c.APIKey[:8] + "..."
}
