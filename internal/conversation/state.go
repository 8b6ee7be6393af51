// Package conversation routes each user's messages through the template
// setup and generation flows.
package conversation

import (
	"sync"
	"time"
)

// Phase is where a user is in a multi-message flow.
type Phase string

const (
	PhaseIdle                        Phase = "idle"
	PhaseAwaitingTemplateBody        Phase = "awaiting_template_body"
	PhaseAwaitingTemplateDescription Phase = "awaiting_template_description"
	PhaseAwaitingVacancyText         Phase = "awaiting_vacancy_text"
	PhaseAwaitingDescriptionEdit     Phase = "awaiting_description_edit"
)

// DefaultStateTTL is how long an unfinished flow survives without a reply.
const DefaultStateTTL = 24 * time.Hour

// State is one user's conversation state. PendingBody is only set while
// the user is in PhaseAwaitingTemplateDescription.
type State struct {
	OwnerID     string
	Phase       Phase
	PendingBody string
	UpdatedAt   time.Time
}

// Idle reports whether no flow is in progress.
func (s State) Idle() bool {
	return s.Phase == "" || s.Phase == PhaseIdle
}

// StateStore holds conversation states. Get returns an idle state for an
// unknown owner.
type StateStore interface {
	Get(ownerID string) State
	Set(state State)
	Reset(ownerID string)
}

// MemoryStateStore keeps states for the life of the process. Idle states
// are not stored and expired ones read as idle.
type MemoryStateStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	states map[string]State
}

// NewMemoryStateStore returns an empty store. A ttl <= 0 uses
// DefaultStateTTL.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStateStore{
		ttl:    ttl,
		now:    time.Now,
		states: make(map[string]State),
	}
}

// Get implements StateStore.
func (m *MemoryStateStore) Get(ownerID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[ownerID]
	if !ok {
		return State{OwnerID: ownerID, Phase: PhaseIdle}
	}
	if m.now().Sub(state.UpdatedAt) > m.ttl {
		delete(m.states, ownerID)
		return State{OwnerID: ownerID, Phase: PhaseIdle}
	}
	return state
}

// Set implements StateStore.
func (m *MemoryStateStore) Set(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state.Idle() {
		delete(m.states, state.OwnerID)
		return
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = m.now()
	}
	m.states[state.OwnerID] = state
}

// Reset implements StateStore.
func (m *MemoryStateStore) Reset(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, ownerID)
}

// Len returns the number of owners with a flow in progress.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
