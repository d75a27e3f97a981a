package core

// Conversation roles. The extractor and history filters treat these as a
// closed set; unknown roles are passed through but never selected as answers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is a single role-tagged conversation record. Messages are value
// types; once appended to a history they are treated as immutable.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-authored text message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// IsAssistant reports whether the message was authored by the assistant.
func (m Message) IsAssistant() bool { return m.Role == RoleAssistant }
