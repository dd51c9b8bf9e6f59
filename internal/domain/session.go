// Package domain contains the bridge's identifiers and wire payloads, no logic.
package domain

import (
	"encoding/json"
	"fmt"
)

// SessionID identifies one logical pairing attempt between a plugin and a
// phone. It is chosen by the caller (the plugin mints it and bakes it into
// the URL the phone scans); the server treats it as opaque.
type SessionID string

// Role is one of the two fixed participant types in a session. Each session
// holds at most one live stream per role.
type Role string

const (
	RoleReceiver Role = "receiver"
	RoleSender   Role = "sender"
)

// ParseRole rejects anything that is not exactly one of the two roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleReceiver:
		return RoleReceiver, nil
	case RoleSender:
		return RoleSender, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Opposite returns the peer role.
func (r Role) Opposite() Role {
	if r == RoleReceiver {
		return RoleSender
	}
	return RoleReceiver
}

// SignalMessage is an opaque signaling payload. The relay only checks that
// it is well-formed JSON and forwards it verbatim; the `type` field inside
// (offer, answer, candidate, ...) is meaningful to the peers alone.
type SignalMessage = json.RawMessage

// Server-originated stream events.
var (
	EventPeerJoined = SignalMessage(`{"type":"peer-joined"}`)
	EventSuperseded = SignalMessage(`{"type":"superseded"}`)
)
