// internal/models/chat.go
package models

import (
	"github.com/google/uuid"
)

// ChatSession persists one conversation with the assistant. Messages are
// stored as an opaque JSON array; the backend never interprets individual
// message parts beyond counting them.
type ChatSession struct {
	BaseModel
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title    string    `json:"title" gorm:"size:255;not null"`
	Summary  string    `json:"summary,omitempty" gorm:"type:text"`
	Messages string    `json:"-" gorm:"type:text;not null;default:'[]'"`

	Owner User `json:"-" gorm:"foreignKey:UserID"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:512"`
	NewValues    JSONB      `json:"new_values,omitempty" gorm:"type:jsonb"`
}
