package port

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sort"
	"sync"

	"ballphys/game"
	"ballphys/protocol"
)

var ErrSessionClosing = errors.New("session is closing")

// Manager holds lanes by session code. Lanes are created on first step or via
// CreateLane. A closed lane stays in closing until it has answered its queue,
// and its code cannot be reused until then.
type Manager struct {
	mu      sync.RWMutex
	lanes   map[string]*Lane
	closing map[string]*Lane
	stepper *game.Stepper
	out     *Replier
}

func NewManager(s *game.Stepper, out *Replier) *Manager {
	return &Manager{
		lanes:   make(map[string]*Lane),
		closing: make(map[string]*Lane),
		stepper: s,
		out:     out,
	}
}

// GetOrCreateLane returns the lane for the given code, creating it if needed.
// It fails with ErrSessionClosing while a lane with that code is closing.
func (m *Manager) GetOrCreateLane(code string) (*Lane, error) {
	if code == "" {
		return nil, errors.New("empty session code")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lanes[code]; ok {
		return l, nil
	}
	if _, ok := m.closing[code]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosing, code)
	}
	return m.startLane(code), nil
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateLane generates a unique 6-char code, starts the lane, and returns the code.
func (m *Manager) CreateLane() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.lanes[code]; exists {
			continue
		}
		if _, exists := m.closing[code]; exists {
			continue
		}
		m.startLane(code)
		return code
	}
}

func (m *Manager) startLane(code string) *Lane {
	l := NewLane(code, m.stepper, m.out)
	m.lanes[code] = l
	go l.Run()
	log.Printf("lane %s started", code)
	return l
}

// CloseLane queues a Leave behind the lane's pending steps. It reports false
// when no lane has that code.
func (m *Manager) CloseLane(code string, ref uint64) bool {
	m.mu.Lock()
	l, ok := m.lanes[code]
	if ok {
		delete(m.lanes, code)
		m.closing[code] = l
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	l.Inbox <- Leave{Ref: ref}
	log.Printf("lane %s closing after %d steps", code, l.Steps())

	go func() {
		<-l.Done()
		m.mu.Lock()
		if m.closing[code] == l {
			delete(m.closing, code)
		}
		m.mu.Unlock()
	}()
	return true
}

// ListLanes returns all active lanes sorted by code.
func (m *Manager) ListLanes() []protocol.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]protocol.SessionInfo, 0, len(m.lanes))
	for code, l := range m.lanes {
		out = append(out, protocol.SessionInfo{Session: code, Steps: l.Steps()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out
}

// Drain answers everything queued on every lane, closing ones included, and
// returns once they have all exited.
func (m *Manager) Drain() {
	lanes := m.takeAll()
	for _, l := range lanes {
		select {
		case l.Inbox <- drain{}:
		case <-l.Done():
		}
	}
	for _, l := range lanes {
		<-l.Done()
	}
}

// StopAll stops every lane, dropping queued steps, and waits for any step
// in progress to be answered.
func (m *Manager) StopAll() {
	lanes := m.takeAll()
	for _, l := range lanes {
		l.Stop()
	}
	for _, l := range lanes {
		<-l.Done()
	}
}

func (m *Manager) takeAll() []*Lane {
	m.mu.Lock()
	defer m.mu.Unlock()
	lanes := make([]*Lane, 0, len(m.lanes)+len(m.closing))
	for _, l := range m.lanes {
		lanes = append(lanes, l)
	}
	for _, l := range m.closing {
		lanes = append(lanes, l)
	}
	m.lanes = make(map[string]*Lane)
	m.closing = make(map[string]*Lane)
	return lanes
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
