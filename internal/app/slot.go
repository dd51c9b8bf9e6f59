package app

import (
	"errors"
	"sync"

	"github.com/dkeye/phonebridge/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrSlotClosed   = errors.New("slot closed")
)

// slotBuffer bounds how far a stream writer may lag behind the relay before
// pushes start failing. Signaling exchanges are a handful of small messages.
const slotBuffer = 32

// Slot is the server-side handle of one role's event stream: a single-
// producer ordered channel the stream handler drains. The registry stores
// exactly one of these per (session, role).
type Slot struct {
	ch chan domain.SignalMessage

	mu     sync.RWMutex
	closed bool
}

func NewSlot() *Slot {
	return &Slot{ch: make(chan domain.SignalMessage, slotBuffer)}
}

// TrySend enqueues a frame without blocking. It fails once the slot is
// closed or the consumer has stopped draining.
func (s *Slot) TrySend(msg domain.SignalMessage) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSlotClosed
	}
	select {
	case s.ch <- msg:
	default:
		return ErrBackpressure
	}
	return nil
}

// Recv exposes the drain side to the stream handler. The channel closes
// when the slot does.
func (s *Slot) Recv() <-chan domain.SignalMessage {
	return s.ch
}

// Close is idempotent and safe against concurrent TrySend.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
