package oneshot

import (
	"context"
	"time"
)

// A Receiver is the consuming handle of a channel pair created by [New].
//
// A Receiver may attempt to receive any number of times, but at most one
// attempt over its lifetime yields a value; every attempt after that
// reports [ErrAlreadyRetrieved]. Receive attempts are safe for
// concurrent use by multiple goroutines.
type Receiver[T any] struct {
	cell *cell[T]
}

// TryRecv reports the current disposition of the channel without
// blocking: it returns the value if one has been delivered and not yet
// consumed, ErrAlreadyRetrieved if the value was consumed earlier,
// ErrDisconnected if the sender was retired without a value, and
// ErrNotReady if nothing has happened yet.
func (r *Receiver[T]) TryRecv() (T, error) {
	c := r.cell
	c.μ.Lock()
	defer c.μ.Unlock()
	return c.takeLocked()
}

// Recv blocks until a value is delivered or the sender is retired, and
// returns the value or ErrDisconnected accordingly. If the value was
// consumed by an earlier receive, Recv reports ErrAlreadyRetrieved.
//
// Recv has no timeout: if the sender is leaked without ever being used
// or closed, Recv blocks forever. Use [Receiver.RecvContext] or
// [Receiver.RecvDeadline] to bound the wait.
func (r *Receiver[T]) Recv() (T, error) {
	c := r.cell
	for {
		v, err := r.TryRecv()
		if err != ErrNotReady {
			return v, err
		}
		<-c.done
	}
}

// RecvContext is like [Receiver.Recv], but gives up and reports the
// context error if ctx ends before the sender acts. Giving up does not
// consume the channel; a later receive can still succeed.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	c := r.cell
	for {
		v, err := r.TryRecv()
		if err != ErrNotReady {
			return v, err
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-c.done:
		}
	}
}

// RecvTimeout is like [Receiver.Recv], but gives up and reports
// ErrNotReady if no value arrives within d. The duration is converted
// to an absolute deadline once, at the time of the call.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	return r.RecvDeadline(time.Now().Add(d))
}

// RecvDeadline is like [Receiver.Recv], but gives up and reports
// ErrNotReady if no value arrives before the absolute deadline. The
// time remaining is recomputed from the deadline on every iteration, so
// a premature wakeup cannot stretch the effective wait. Timing out does
// not consume the channel; a later receive can still succeed.
func (r *Receiver[T]) RecvDeadline(deadline time.Time) (T, error) {
	c := r.cell
	for {
		v, err := r.TryRecv()
		if err != ErrNotReady {
			return v, err
		}
		now := time.Now()
		if !now.Before(deadline) {
			var zero T
			return zero, ErrNotReady
		}
		t := time.NewTimer(deadline.Sub(now))
		select {
		case <-t.C:
			var zero T
			return zero, ErrNotReady
		case <-c.done:
			t.Stop()
		}
	}
}

// Ready returns a channel that is closed once the channel has settled,
// that is, once a value has been delivered or the sender has been
// retired without one. It allows a receiver to take part in a select;
// once Ready is closed, [Receiver.TryRecv] will not report ErrNotReady.
func (r *Receiver[T]) Ready() <-chan struct{} { return r.cell.done }

// takeLocked implements the non-blocking receive protocol. The caller
// must hold c.μ.
func (c *cell[T]) takeLocked() (T, error) {
	var zero T
	switch c.state.Load() {
	case stateFinished:
		if !c.full {
			return zero, ErrAlreadyRetrieved
		}
		v := c.value
		c.value = zero // release the payload
		c.full = false
		return v, nil
	case stateDisconnected:
		return zero, ErrDisconnected
	default:
		return zero, ErrNotReady
	}
}
