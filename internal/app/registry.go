package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPeerNotFound    = errors.New("peer not found")
)

type session struct {
	slots map[domain.Role]*Slot
}

// Registry is the session table: SessionID -> at most one slot per role.
// It exclusively owns every session record and slot reference; handlers only
// hold the slot they registered themselves.
//
// A single mutex is enough here: sessions are single-digit concurrent
// pairings and every critical section is a map touch plus at most one
// non-blocking channel send. Streams idle outside the lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]*session)}
}

// Register stores slot for (id, role), creating the session if absent. A
// slot already occupying the role is displaced: it gets a final superseded
// frame, is closed, and its eventual Unregister becomes a no-op via the
// identity guard. Returns the opposite role's slot if one is present so the
// caller can announce the pairing to both sides.
func (r *Registry) Register(id domain.SessionID, role domain.Role, slot *Slot) (peer *Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		sess = &session{slots: make(map[domain.Role]*Slot, 2)}
		r.sessions[id] = sess
	}
	if old, ok := sess.slots[role]; ok && old != slot {
		_ = old.TrySend(domain.EventSuperseded)
		old.Close()
		log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("role", string(role)).Msg("displaced stale subscription")
	}
	sess.slots[role] = slot
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("role", string(role)).Msg("registered")
	return sess.slots[role.Opposite()]
}

// Relay pushes msg onto the stream of from's peer. The push happens under
// the registry lock so it can never interleave with that peer's
// unregistration. A push onto a dead or saturated slot is reported as
// ErrPeerNotFound: from the caller's point of view the peer is gone.
func (r *Registry) Relay(id domain.SessionID, from domain.Role, msg domain.SignalMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	peer, ok := sess.slots[from.Opposite()]
	if !ok {
		return ErrPeerNotFound
	}
	if err := peer.TrySend(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerNotFound, err)
	}
	return nil
}

// Peer returns the slot currently serving the opposite role, if any.
func (r *Registry) Peer(id domain.SessionID, role domain.Role) (*Slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	peer, ok := sess.slots[role.Opposite()]
	return peer, ok
}

// Unregister removes the slot for (id, role) only if slot is still the one
// stored there. A stream that was displaced by a reconnect therefore cannot
// tear down its successor. The session is deleted the moment its last slot
// goes; an empty session never stays in the table.
func (r *Registry) Unregister(id domain.SessionID, role domain.Role, slot *Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return
	}
	if sess.slots[role] != slot {
		return
	}
	delete(sess.slots, role)
	slot.Close()
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("role", string(role)).Msg("unregistered")
	if len(sess.slots) == 0 {
		delete(r.sessions, id)
		log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("session removed")
	}
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
