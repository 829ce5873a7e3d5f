package chat

const (
	RoleUser      = "user"      // Player
	RoleAssistant = "assistant" // Game director
	RoleSystem    = "system"    // Scenario and rules
)

// Message represents a single message in an LLM conversation.
// The shape follows the OpenAI chat completions API and is accepted
// by every provider this service talks to.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// System is shorthand for a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User is shorthand for a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
