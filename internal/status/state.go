package status

import "sync"

// Phase is the connection login phase shown on the status page.
type Phase int

const (
	// PhaseWaiting means the client is starting up and no QR code exists yet.
	PhaseWaiting Phase = iota
	// PhasePairing means a QR code is available and waits to be scanned.
	PhasePairing
	// PhaseConnected means the WhatsApp session is established.
	PhaseConnected
)

// State is the tri-state connection snapshot shared between the WhatsApp
// gateway (writer) and the HTTP handler (reader).
type State struct {
	mu    sync.RWMutex
	phase Phase
	qr    string
}

func NewState() *State {
	return &State{}
}

func (s *State) SetWaiting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseWaiting
	s.qr = ""
}

func (s *State) SetQR(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhasePairing
	s.qr = code
}

func (s *State) SetConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseConnected
	s.qr = ""
}

// Snapshot returns the current phase and, during pairing, the QR code.
func (s *State) Snapshot() (Phase, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase, s.qr
}
