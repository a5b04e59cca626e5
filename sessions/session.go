package sessions

import (
	"github.com/jrsteele09/estate-client/internal/utils"
)

// Record is one server-tracked login (one per device). The client only lists
// and revokes these; it never creates them.
type Record struct {
	ID           int64          `json:"id"`            // Server session identifier
	DeviceInfo   map[string]any `json:"device_info"`   // Whatever the device reported at login
	IPAddress    string         `json:"ip_address"`    // Address the login came from
	CreatedAt    utils.Time     `json:"created_at"`    // When the login happened
	LastAccessed utils.Time     `json:"last_accessed"` // Last authenticated request
	ExpiresAt    utils.Time     `json:"expires_at"`    // When the server will drop it
}

// UserAgent extracts the user agent the device reported, if any.
func (r Record) UserAgent() string {
	ua, _ := r.DeviceInfo["user_agent"].(string)
	return ua
}

// RevokeAllResult is returned when every session is revoked at once.
type RevokeAllResult struct {
	Message      string `json:"message"`
	RevokedCount int    `json:"revoked_count"`
}
