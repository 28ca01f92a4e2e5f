package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse for API
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"type"`
	Level     string            `json:"level"`
	Title     string            `json:"title"`
	Message   *string           `json:"message,omitempty"`
	Data      *NotificationData `json:"data,omitempty"`
	Channels  []string          `json:"channels"`
	IsRead    bool              `json:"is_read"`
	CreatedAt string            `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Level:     string(n.Level),
		Title:     n.Title,
		Channels:  []string(n.Channels),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}

	if n.Message.Valid {
		resp.Message = &n.Message.String
	}

	if len(n.Data) > 0 {
		resp.Data = n.GetData()
	}

	return resp
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
