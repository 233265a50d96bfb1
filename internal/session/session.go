// Package session holds the explicit interface state: the buyer/seller view
// mode and the product currently being edited. It gates which operations are
// reachable but never mutates catalog or cart state.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// ViewMode is the buyer/seller role gate.
type ViewMode int

const (
	ModeBuyer ViewMode = iota
	ModeSeller
)

func (m ViewMode) String() string {
	if m == ModeSeller {
		return "seller"
	}
	return "buyer"
}

// State is an immutable value: transitions return the next state instead of
// mutating in place, so they stay separately testable.
type State struct {
	Mode             ViewMode
	EditingProductID *uuid.UUID
}

// ToggleMode flips the view mode. The edit target is left untouched; it is
// simply unreachable outside seller mode.
func (s State) ToggleMode() State {
	if s.Mode == ModeBuyer {
		s.Mode = ModeSeller
	} else {
		s.Mode = ModeBuyer
	}
	return s
}

// StartEdit marks the product as the current edit target.
func (s State) StartEdit(productID uuid.UUID) State {
	s.EditingProductID = &productID
	return s
}

// StopEdit clears the edit target.
func (s State) StopEdit() State {
	s.EditingProductID = nil
	return s
}

// Manager guards the current state for concurrent access. The zero mode is
// buyer, matching the storefront's initial view.
type Manager struct {
	mu    sync.RWMutex
	state State
}

func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Toggle flips the view mode and returns the new state.
func (m *Manager) Toggle() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.ToggleMode()
	return m.state
}

// StartEdit sets the edit target and returns the new state.
func (m *Manager) StartEdit(productID uuid.UUID) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.StartEdit(productID)
	return m.state
}

// StopEdit clears the edit target and returns the new state.
func (m *Manager) StopEdit() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.StopEdit()
	return m.state
}
