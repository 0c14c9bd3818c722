package ai

import "context"

// Client is the hosted-model boundary: one request per dialogue turn, no
// streaming. Implementations must not mutate history.
type Client interface {
	GetReply(ctx context.Context, history []Message, input string) (string, error)
}

// Message is the provider-agnostic dialogue shape handed to the model.
type Message struct {
	Role string // "user" | "assistant" | "system"
	Text string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
