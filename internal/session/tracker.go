// Package session tracks which single-turn dialogue, if any, each user has open.
// State lives only in memory and is lost on restart.
package session

import "sync"

// State identifies an open capture dialogue.
type State string

const (
	StateNone State = "" // Top-level menu, nothing captured

	StateFreeText         State = "free_text"
	StateFeedback         State = "feedback"
	StateSuggestion       State = "suggestion"
	StateComplaint        State = "complaint"
	StateQuestion         State = "question"
	StatePromoCode        State = "promo_code"
	StateAdminPassword    State = "admin_password"
	StateAdminBroadcast   State = "admin_broadcast"
	StateAdminPromoCreate State = "admin_promo_create"
)

// AllStates lists every capture dialogue.
var AllStates = []State{
	StateFreeText,
	StateFeedback,
	StateSuggestion,
	StateComplaint,
	StateQuestion,
	StatePromoCode,
	StateAdminPassword,
	StateAdminBroadcast,
	StateAdminPromoCreate,
}

// Valid reports whether s is StateNone or one of AllStates.
func (s State) Valid() bool {
	if s == StateNone {
		return true
	}
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Tracker maps a user identity to its open dialogue. The zero value is not
// usable; create one with NewTracker.
type Tracker struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]State)}
}

// Set opens dialogue s for the user, replacing whatever was open before.
// Setting StateNone is the same as Clear.
func (t *Tracker) Set(userID int64, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == StateNone {
		delete(t.states, userID)
		return
	}
	t.states[userID] = s
}

// Get returns the user's open dialogue or StateNone.
func (t *Tracker) Get(userID int64) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[userID]
}

func (t *Tracker) Clear(userID int64) {
	t.Set(userID, StateNone)
}

// Len returns the number of users with an open dialogue.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.states)
}
