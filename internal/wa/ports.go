package wa

import "context"

// Responder produces the user-facing reply for one inbound message. It never
// fails: model errors surface as a fixed fallback reply string.
type Responder interface {
	Reply(ctx context.Context, userID, text string) string
}

// StatusSink receives connection-state transitions from the gateway.
type StatusSink interface {
	SetWaiting()
	SetQR(code string)
	SetConnected()
}
