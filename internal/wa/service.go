package wa

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/JoaoVlLeao/bot-provas-medicina/internal/ai"
	"github.com/JoaoVlLeao/bot-provas-medicina/internal/conversation"
)

// FallbackReply is returned whenever the model call fails. The transcript is
// left untouched in that case so a failed turn is never replayed as context.
const FallbackReply = "error processing with AI, try again shortly"

// Service orchestrates one inbound turn: transcript snapshot, model call,
// turn recording. Turns for the same user are serialized so overlapping
// messages cannot lose updates or double-trim the history.
type Service struct {
	store  *conversation.Store
	client ai.Client
	log    *slog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewService(store *conversation.Store, client ai.Client, log *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("wa: conversation store must not be nil")
	}
	if client == nil {
		return nil, errors.New("wa: ai client must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		client: client,
		log:    log,
		users:  make(map[string]*sync.Mutex),
	}, nil
}

// Reply runs one turn for userID. On model failure the error is logged,
// nothing is recorded and FallbackReply is returned; the failure is never
// retried and never propagated.
func (s *Service) Reply(ctx context.Context, userID, text string) string {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	history := toAIMessages(s.store.GetOrCreate(userID))

	reply, err := s.client.GetReply(ctx, history, text)
	if err != nil {
		s.log.Error("model call failed", "user", userID, "err", err)
		return FallbackReply
	}

	s.store.AppendTurn(userID, text, reply)
	return reply
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}

func toAIMessages(entries []conversation.Entry) []ai.Message {
	msgs := make([]ai.Message, 0, len(entries))
	for _, e := range entries {
		role := ai.RoleUser
		switch e.Role {
		case conversation.RoleSystem:
			role = ai.RoleSystem
		case conversation.RoleModel:
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Text: e.Text})
	}
	return msgs
}
