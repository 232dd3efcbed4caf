package models

import "time"

type ConversationStatus string
type SenderRole string

const (
	ConversationStatusOpen   ConversationStatus = "open"
	ConversationStatusClosed ConversationStatus = "closed"

	SenderRoleUser  SenderRole = "user"
	SenderRoleAdmin SenderRole = "admin"
)

// ChatConversation is soft-deleted independently per actor: hiding a thread
// for the customer must not hide it for support, and vice versa.
type ChatConversation struct {
	ID             string             `gorm:"primaryKey" json:"id"`
	UserID         string             `gorm:"index;not null" json:"user_id"`
	Subject        string             `json:"subject"`
	Status         ConversationStatus `gorm:"type:VARCHAR(20);default:'open'" json:"status"`
	DeletedByUser  bool               `gorm:"default:false" json:"deleted_by_user"`
	DeletedByAdmin bool               `gorm:"default:false" json:"deleted_by_admin"`
	Messages       []ChatMessage      `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type ChatMessage struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"index;not null" json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	SenderRole     SenderRole `gorm:"type:VARCHAR(10)" json:"sender_role"`
	Body           string     `json:"body"`
	DeletedByUser  bool       `gorm:"default:false" json:"deleted_by_user"`
	DeletedByAdmin bool       `gorm:"default:false" json:"deleted_by_admin"`
	CreatedAt      time.Time  `json:"created_at"`
}
