package model

// SystemSender is the reserved username for server-originated chat
// messages. It bypasses the room membership check.
const SystemSender = "Server"

// ChatConfig holds per-room chat behavior settings
type ChatConfig struct {
	// MaxMessageChars bounds the trimmed message length;
	// UnboundedMessageChars disables the limit
	MaxMessageChars int
	// FilterProfanity routes messages through the configured filter
	FilterProfanity bool
}

// UnboundedMessageChars disables the message length limit
const UnboundedMessageChars = 0

// DefaultChatConfig returns the chat settings applied to new rooms
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		MaxMessageChars: 500,
		FilterProfanity: false,
	}
}

// ChatMessage is one entry in a room's append-only chat log
type ChatMessage struct {
	RoomCode  RoomCode `json:"roomCode"`
	Username  string   `json:"username"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestampMillis"` // unix millis
}

// Chat is a room's chat state: settings plus the message log.
// Its lifetime is the owning room's lifetime.
type Chat struct {
	Config   ChatConfig
	Messages []ChatMessage
}

// Append adds a message to the log
func (c *Chat) Append(msg ChatMessage) {
	c.Messages = append(c.Messages, msg)
}
