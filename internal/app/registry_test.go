package app

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/phonebridge/internal/domain"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, 0, r.Len())

	a := NewSlot()
	peer := r.Register("abc", domain.RoleReceiver, a)
	assert.Nil(t, peer, "first subscriber has no peer yet")
	require.Equal(t, 1, r.Len())

	b := NewSlot()
	peer = r.Register("abc", domain.RoleSender, b)
	assert.Same(t, a, peer, "second subscriber sees the first")

	got, ok := r.Peer("abc", domain.RoleSender)
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Unregister("abc", domain.RoleReceiver, a)
	require.Equal(t, 1, r.Len(), "session survives while sender is subscribed")

	r.Unregister("abc", domain.RoleSender, b)
	require.Equal(t, 0, r.Len(), "last slot removal deletes the session")
}

func TestUnregisterIdentityGuard(t *testing.T) {
	r := NewRegistry()

	a := NewSlot()
	r.Register("abc", domain.RoleSender, a)

	// Reconnect: same role, new stream, before the old close handler fired.
	b := NewSlot()
	r.Register("abc", domain.RoleSender, b)

	// The displaced stream gets told, then its channel ends.
	ev, ok := <-a.Recv()
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"superseded"}`, string(ev))
	_, ok = <-a.Recv()
	assert.False(t, ok, "displaced slot channel must be closed")

	// The stale close event must not touch the new registration.
	r.Unregister("abc", domain.RoleSender, a)
	got, ok := r.Peer("abc", domain.RoleReceiver)
	require.True(t, ok)
	assert.Same(t, b, got)

	r.Unregister("abc", domain.RoleSender, b)
	assert.Equal(t, 0, r.Len())
}

func TestRelayErrors(t *testing.T) {
	r := NewRegistry()
	msg := domain.SignalMessage(`{"type":"offer"}`)

	err := r.Relay("ghost", domain.RoleSender, msg)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := NewSlot()
	r.Register("solo", domain.RoleSender, s)
	err = r.Relay("solo", domain.RoleSender, msg)
	assert.ErrorIs(t, err, ErrPeerNotFound)

	// A peer whose stream just died counts as gone too.
	dead := NewSlot()
	r.Register("solo", domain.RoleReceiver, dead)
	dead.Close()
	err = r.Relay("solo", domain.RoleSender, msg)
	assert.ErrorIs(t, err, ErrPeerNotFound)
}

func TestRelayFIFO(t *testing.T) {
	r := NewRegistry()
	recv := NewSlot()
	r.Register("ord", domain.RoleReceiver, recv)
	r.Register("ord", domain.RoleSender, NewSlot())

	const n = 20
	for i := 0; i < n; i++ {
		msg, err := json.Marshal(map[string]int{"seq": i})
		require.NoError(t, err)
		require.NoError(t, r.Relay("ord", domain.RoleSender, msg))
	}

	for i := 0; i < n; i++ {
		got := <-recv.Recv()
		assert.JSONEq(t, fmt.Sprintf(`{"seq":%d}`, i), string(got))
	}
}

func TestRelayBackpressure(t *testing.T) {
	r := NewRegistry()
	recv := NewSlot()
	r.Register("slow", domain.RoleReceiver, recv)

	msg := domain.SignalMessage(`{"type":"candidate"}`)
	var err error
	for i := 0; i < slotBuffer+1; i++ {
		err = r.Relay("slow", domain.RoleSender, msg)
	}
	assert.ErrorIs(t, err, ErrPeerNotFound, "a saturated slot reads as a dead peer")
}

func TestConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	msg := domain.SignalMessage(`{"type":"offer"}`)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewSlot()
			r.Register("race", domain.RoleSender, s)
			_ = r.Relay("race", domain.RoleReceiver, msg) // may or may not land
			r.Unregister("race", domain.RoleSender, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len(), "no empty session may survive the churn")
}
