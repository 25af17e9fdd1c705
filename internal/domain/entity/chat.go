package entity

// Role identifica o autor de um turno de chat.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of a chat session.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
