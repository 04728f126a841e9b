// Package oneshot implements a single-producer, single-consumer channel
// that delivers at most one value, with explicit disconnect detection.
//
// A channel is created as a connected pair of handles: a [Sender], used
// exactly once to either deliver a value or to signal that no value will
// ever arrive, and a [Receiver], used to collect the value by blocking,
// polling, or waiting with a bound.
package oneshot

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Errors reported by the receive methods of a [Receiver].
var (
	// ErrDisconnected means the sender was retired without delivering a
	// value, so no value will ever arrive.
	ErrDisconnected = errors.New("sender closed without a value")

	// ErrAlreadyRetrieved means the value was already consumed by an
	// earlier receive on the same channel.
	ErrAlreadyRetrieved = errors.New("value was already retrieved")

	// ErrNotReady means no value has been delivered yet. It is reported
	// only by [Receiver.TryRecv], [Receiver.RecvTimeout], and
	// [Receiver.RecvDeadline]; the unbounded [Receiver.Recv] waits
	// instead.
	ErrNotReady = errors.New("no value is available yet")
)

// States of the shared cell. The state advances from stateNotReady to
// exactly one of the other two values, and never changes thereafter.
const (
	stateNotReady uint32 = iota
	stateFinished
	stateDisconnected
)

// New creates a connected channel pair. The two handles share a single
// cell that holds at most one value of type T; the cell is released once
// both handles are unreachable.
func New[T any]() (*Sender[T], *Receiver[T]) {
	c := &cell[T]{done: make(chan struct{})}
	return &Sender[T]{cell: c}, &Receiver[T]{cell: c}
}

// A cell is the state shared between the two handles of a channel.
//
// The state word is maintained with atomic loads and stores so either
// side can inspect it without taking the lock; μ serializes access to
// the value slot so that checking the state and extracting the value
// happen as one critical section. The done channel is closed exactly
// once, when the state leaves stateNotReady, and stands in for a
// broadcast on a condition variable: it wakes every waiter, including
// any bounded waiter sharing the channel in a select.
type cell[T any] struct {
	state atomic.Uint32

	μ     sync.Mutex
	value T
	full  bool

	done chan struct{} // closed on the terminal state transition
}
