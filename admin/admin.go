// Package admin is the client for the administrator-only endpoints: usage
// analytics, the user directory and the audit trail.
package admin

import (
	"encoding/json"

	"github.com/jrsteele09/estate-client/internal/utils"
)

// Analytics is a snapshot of chat usage across every conversation.
type Analytics struct {
	TotalConversations int            `json:"total_conversations"`
	TotalMessages      int            `json:"total_messages"`
	RoleDistribution   map[string]int `json:"role_distribution"`
	RecentActivity     []Activity     `json:"recent_activity"`
	SystemHealth       string         `json:"system_health"`
	Timestamp          utils.Time     `json:"timestamp"`
}

// Activity is the latest message of one conversation, truncated by the server.
type Activity struct {
	SessionID   string     `json:"session_id"`
	Role        string     `json:"role"`
	LastMessage string     `json:"last_message"`
	Timestamp   utils.Time `json:"timestamp"`
}

// AuditEntry is one recorded action. Details is whatever the server logged.
type AuditEntry struct {
	ID           int64           `json:"id"`
	UserID       *int64          `json:"user_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Details      json.RawMessage `json:"details"`
	IPAddress    string          `json:"ip_address"`
	Timestamp    utils.Time      `json:"timestamp"`
}

// UserFilter narrows the user directory. Zero values are not sent.
type UserFilter struct {
	Role     string
	IsActive *bool
	Skip     int
	Limit    int
}

// AuditFilter narrows the audit trail. Zero values are not sent.
type AuditFilter struct {
	UserID int64
	Action string
	Skip   int
	Limit  int
}

type messageResult struct {
	Message string `json:"message"`
}
