// Package dispatch carries requests from concurrent callers to a single
// event-driven consumer, and routes one reply per request back to its
// caller through a one-shot channel.
//
// A typical consumer owns some resource that must be managed from one
// goroutine (an event loop, a device, a connection). Callers use
// [Queue.Ask] to submit a request and block for its answer; the loop
// ranges over [Queue.Requests] and answers or declines each one.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/creachadair/oneshot"
	"github.com/creachadair/oneshot/reply"
)

// ErrClosed is the sentinel error reported for requests submitted to a
// queue that is closed before they could be delivered.
var ErrClosed = errors.New("request queue is closed")

// A Request is a unit of work delivered to the queue consumer, carrying
// the reply address of the caller that submitted it. The consumer must
// resolve each request exactly once, either with Reply or with Drop.
type Request[Q, R any] struct {
	Body Q // the request payload, as given to Ask or Post

	addr reply.Address[R]
}

// Reply delivers v to the requester. It reports an error if the reply
// address cannot accept the value, for example a file-descriptor target
// (see [reply.FileError]); the request is still resolved in that case,
// and the error is the consumer's to log or ignore.
func (r Request[Q, R]) Reply(v R) error { return r.addr.Send(v) }

// Drop declines the request without an answer. A caller blocked in Ask
// observes [oneshot.ErrDisconnected].
func (r Request[Q, R]) Drop() { r.addr.Close() }

// String describes the request and its reply target for diagnostics.
func (r Request[Q, R]) String() string {
	return fmt.Sprintf("request %v (reply to %v)", r.Body, r.addr)
}

// A Queue delivers requests from multiple concurrent callers to one
// consumer.
//
// A queue wraps and behaves like a normal buffered channel, but when q
// is closed any pending submissions are safely terminated and report
// errors rather than panicking.
type Queue[Q, R any] struct {
	// μ protects the fields below:
	// Lock μ shared to copy or send to ch.
	// Lock μ exclusively to close ch or modify either field.
	μ    sync.RWMutex
	ch   chan Request[Q, R] // delivers requests to the consumer
	done chan struct{}      // closed when the queue is closed
}

// NewQueue creates a new queue with the specified channel buffer
// capacity. If cap == 0, the queue is unbuffered.
func NewQueue[Q, R any](cap int) *Queue[Q, R] {
	return &Queue[Q, R]{ch: make(chan Request[Q, R], cap), done: make(chan struct{})}
}

// Requests returns a channel to which submitted requests are delivered.
// The returned channel is closed when q is closed. After q is closed,
// Requests returns a nil channel.
func (q *Queue[Q, R]) Requests() <-chan Request[Q, R] {
	q.μ.RLock()
	defer q.μ.RUnlock()
	return q.ch
}

// Ask submits body to the queue and blocks until the consumer answers,
// the consumer drops the request, q closes, or ctx ends.
//
// A dropped request reports [oneshot.ErrDisconnected], meaning no
// answer will ever arrive; whether that is fatal is the caller's
// policy. If ctx ends after delivery but before an answer, the answer
// (if any) goes unread, which is harmless.
func (q *Queue[Q, R]) Ask(ctx context.Context, body Q) (R, error) {
	s, r := oneshot.New[R]()
	if err := q.send(ctx, Request[Q, R]{Body: body, addr: reply.To(s)}); err != nil {
		var zero R
		return zero, err
	}
	return r.RecvContext(ctx)
}

// Post submits body with a caller-supplied reply address and returns
// without waiting for an answer. It blocks until the request is
// delivered, q closes, or ctx ends. Use Post to enqueue requests whose
// replies are addressed elsewhere, such as a file-descriptor target
// taken from an external message.
func (q *Queue[Q, R]) Post(ctx context.Context, body Q, addr reply.Address[R]) error {
	return q.send(ctx, Request[Q, R]{Body: body, addr: addr})
}

func (q *Queue[Q, R]) send(ctx context.Context, req Request[Q, R]) error {
	q.μ.RLock()
	defer q.μ.RUnlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	case q.ch <- req:
		return nil
	}
}

// Close closes the queue, which closes the request channel and causes
// any pending submissions to fail. Requests already delivered to the
// consumer remain its responsibility to resolve. If q is already
// closed, Close returns ErrClosed. Close can be called repeatedly, but
// from at most one goroutine at a time.
func (q *Queue[Q, R]) Close() error {
	select {
	case <-q.done:
		return ErrClosed
	default:
		close(q.done)

		q.μ.Lock()
		defer q.μ.Unlock()
		close(q.ch)
		q.ch = nil // no future submitter must see q.ch as ready
		return nil
	}
}
