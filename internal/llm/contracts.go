package llm

import "context"

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one chat-completion message. Content is either a plain
// string or a slice of typed content parts for multimodal requests.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: text}
}

// ImageMessage builds a user message carrying an instruction plus one
// inline image, encoded as a data URI.
func ImageMessage(text, dataURI string) ChatMessage {
	return ChatMessage{
		Role: RoleUser,
		Content: []map[string]any{
			{"type": "text", "text": text},
			{"type": "image_url", "image_url": map[string]any{"url": dataURI}},
		},
	}
}

// ChatRequest describes one chat-completion call. Model and sampling
// parameters are per-request because the pipeline talks to two models:
// a vision model for extraction and a text model for grading.
type ChatRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	ForceJSON   bool // ask the provider for a JSON-object response
	Messages    []ChatMessage
}

// Client is the chat-completion boundary the pipeline depends on.
// Implementations own transport concerns: auth, timeouts, and retries.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
