package authmodal

import (
	"strings"
	"sync"
)

// Mode selects which form the modal shows.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Valid reports whether m is login or register.
func (m Mode) Valid() bool {
	return m == ModeLogin || m == ModeRegister
}

// ParseMode is case-insensitive. It returns false for anything else.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// State is a point-in-time view of the modal.
type State struct {
	Visible bool `json:"visible"`
	Mode    Mode `json:"mode"`
}

// Modal is the sign-in dialog state for one session.
// The zero value is not usable; call New.
type Modal struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// New returns a hidden modal in login mode.
func New() *Modal {
	return &Modal{state: State{Mode: ModeLogin}}
}

// OnChange registers fn to be called after every state change.
// fn runs outside the modal's lock.
func (m *Modal) OnChange(fn func(State)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Open shows the modal. An explicit mode is applied first; an unknown one
// means login. Without a mode the last one is kept.
func (m *Modal) Open(mode ...Mode) {
	m.update(func(s *State) {
		if len(mode) > 0 {
			if mode[0].Valid() {
				s.Mode = mode[0]
			} else {
				s.Mode = ModeLogin
			}
		}
		s.Visible = true
	})
}

// Close hides the modal. The mode is kept.
func (m *Modal) Close() {
	m.update(func(s *State) {
		s.Visible = false
	})
}

// ToggleMode flips between login and register, visible or not.
func (m *Modal) ToggleMode() {
	m.update(func(s *State) {
		if s.Mode == ModeLogin {
			s.Mode = ModeRegister
		} else {
			s.Mode = ModeLogin
		}
	})
}

// SetMode switches to mode. Unknown modes are ignored and reported as false.
func (m *Modal) SetMode(mode Mode) bool {
	if !mode.Valid() {
		return false
	}
	m.update(func(s *State) {
		s.Mode = mode
	})
	return true
}

// Snapshot returns the current state.
func (m *Modal) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Visible reports whether the modal is shown.
func (m *Modal) Visible() bool {
	return m.Snapshot().Visible
}

// Mode returns the current mode.
func (m *Modal) Mode() Mode {
	return m.Snapshot().Mode
}

// Restore replaces the state, e.g. when a session is rehydrated.
// An invalid mode is replaced by login. OnChange is not called.
func (m *Modal) Restore(s State) {
	if !s.Mode.Valid() {
		s.Mode = ModeLogin
	}
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Modal) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	s := m.state
	hook := m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}
