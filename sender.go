package oneshot

import "sync/atomic"

// A Sender is the producing handle of a channel pair created by [New].
//
// A Sender is single-use: it is retired either by delivering a value
// with Send, or by calling Close to signal that no value is coming.
// Calling Send on a retired Sender panics; Close on a retired Sender is
// a no-op. A Sender must not be copied, and there is no way to obtain a
// second Sender for the same cell.
type Sender[T any] struct {
	cell  *cell[T]
	spent atomic.Bool
}

// Send delivers v to the receiving side and retires s. Any goroutine
// blocked in a receive on the paired [Receiver] wakes up and observes
// the value. Send does not block and cannot fail; if the receiver has
// already given up, the value is simply never read.
//
// Send panics if s was already retired by an earlier Send or Close.
func (s *Sender[T]) Send(v T) {
	if !s.spent.CompareAndSwap(false, true) {
		panic("oneshot: send on a spent sender")
	}
	c := s.cell
	c.μ.Lock()
	c.value = v
	c.full = true
	c.state.Store(stateFinished)
	c.μ.Unlock()
	close(c.done)
}

// Close retires s without delivering a value. Any goroutine blocked in
// a receive on the paired [Receiver] wakes up and reports
// [ErrDisconnected], as do all later receives.
//
// Close is idempotent, and a Close following a completed Send has no
// effect: a delivered value is never clobbered.
func (s *Sender[T]) Close() {
	if !s.spent.CompareAndSwap(false, true) {
		return
	}
	c := s.cell
	c.state.CompareAndSwap(stateNotReady, stateDisconnected)
	close(c.done)
}
