package conversation

import "sync"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// Entry is one dialogue turn. Immutable once stored.
type Entry struct {
	Role Role
	Text string
}

const (
	// maxEntries caps a transcript after every append. The value bounds the
	// token cost and latency of each model call.
	maxEntries = 30
	// preambleLen is the fixed system prompt + acknowledgment prefix at the
	// head of every transcript. These entries are never evicted.
	preambleLen = 2
	// evictLen entries are removed per eviction: one user/model pair, so the
	// remaining dialogue keeps its alternating-role structure.
	evictLen = 2
)

// Store maps a user identifier to a bounded conversation transcript.
// Transcripts are created lazily on first contact and live for the process
// lifetime; there is no persistence. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	transcripts map[string][]Entry

	systemPrompt string
	ack          string
}

// NewStore creates an empty store. Every new transcript is seeded with
// systemPrompt as the system entry and ack as the synthetic model reply.
func NewStore(systemPrompt, ack string) *Store {
	return &Store{
		transcripts:  make(map[string][]Entry),
		systemPrompt: systemPrompt,
		ack:          ack,
	}
}

// GetOrCreate returns a copy of the user's transcript, seeding a fresh one
// with the preamble pair if the user has never been seen. Never fails.
func (s *Store) GetOrCreate(userID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.seedLocked(userID)
	out := make([]Entry, len(t))
	copy(out, t)
	return out
}

// Append adds one entry to the user's transcript, seeding it first if needed.
// If the transcript then exceeds maxEntries, the oldest user/model pair right
// after the preamble is dropped.
func (s *Store) Append(userID string, role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(userID, Entry{Role: role, Text: text})
}

// AppendTurn records a completed user/model exchange under one critical
// section, so concurrent turns for the same user cannot interleave half-pairs
// or race the eviction step.
func (s *Store) AppendTurn(userID, userText, modelText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(userID, Entry{Role: RoleUser, Text: userText})
	s.appendLocked(userID, Entry{Role: RoleModel, Text: modelText})
}

// Len reports the current transcript length, 0 for unknown users.
func (s *Store) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts[userID])
}

func (s *Store) seedLocked(userID string) []Entry {
	t, ok := s.transcripts[userID]
	if !ok {
		t = []Entry{
			{Role: RoleSystem, Text: s.systemPrompt},
			{Role: RoleModel, Text: s.ack},
		}
		s.transcripts[userID] = t
	}
	return t
}

func (s *Store) appendLocked(userID string, e Entry) {
	t := append(s.seedLocked(userID), e)
	if len(t) > maxEntries {
		t = append(t[:preambleLen], t[preambleLen+evictLen:]...)
	}
	s.transcripts[userID] = t
}
