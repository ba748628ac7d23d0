package domain

import "time"

type MessageRole string

const (
	RoleUserMessage   MessageRole = "user"
	RoleBotMessage    MessageRole = "bot"
	RoleSystemMessage MessageRole = "system"
)

// ConversationMessage is one line of the chat widget history.
type ConversationMessage struct {
	Role    MessageRole `json:"role" bson:"role"`
	Content string      `json:"content" bson:"content"`
}

// ChatLogEntry is the per-turn audit record.
type ChatLogEntry struct {
	ID          uint      `json:"-" gorm:"primaryKey" bson:"-"`
	UserID      string    `json:"user_id" gorm:"index;size:64" bson:"userId"`
	UserMessage string    `json:"user_message" gorm:"type:text" bson:"userMessage"`
	BotResponse string    `json:"bot_response" gorm:"type:text" bson:"botResponse"`
	Route       string    `json:"route" gorm:"size:16" bson:"route"`
	Timestamp   time.Time `json:"timestamp" gorm:"index" bson:"timestamp"`
}

func (ChatLogEntry) TableName() string { return "chat_logs" }
