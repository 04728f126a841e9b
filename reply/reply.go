// Package reply routes a single response value to its caller, either
// through an in-memory one-shot sender or (notionally) through a raw
// file descriptor.
//
// Only the in-memory target is implemented. The file-descriptor target
// exists so that externally-addressed requests can be represented and
// carried through a request queue, but delivering to it always fails:
// no wire format for descriptor replies has been defined.
package reply

import (
	"errors"
	"fmt"

	"github.com/creachadair/oneshot"
)

// ErrNoTarget is reported by Send on a zero Address, which has no
// destination for the reply.
var ErrNoTarget = errors.New("reply address has no target")

// A FileError reports an attempt to deliver a reply to a raw file
// descriptor, which is not supported. It wraps [errors.ErrUnsupported].
type FileError struct {
	FD int // the descriptor the reply was addressed to
}

func (e *FileError) Error() string {
	return fmt.Sprintf("write reply to fd %d: %v", e.FD, errors.ErrUnsupported)
}

func (e *FileError) Unwrap() error { return errors.ErrUnsupported }

// Address kinds. The zero kind is an address with no target.
const (
	targetMemory = iota + 1
	targetFile
)

// An Address designates where a single reply value should be delivered.
// The zero Address has no target. An Address is single-use: after a
// successful Send or a Close, its target is spent.
type Address[T any] struct {
	kind int
	s    *oneshot.Sender[T]
	fd   int
}

// To returns an Address that delivers the reply through s.
func To[T any](s *oneshot.Sender[T]) Address[T] {
	return Address[T]{kind: targetMemory, s: s}
}

// ToFile returns an Address that names the raw file descriptor fd as
// the reply target. Sending to such an address always fails; see
// [FileError].
func ToFile[T any](fd int) Address[T] {
	return Address[T]{kind: targetFile, fd: fd}
}

// Send delivers v to the address target. For a memory target the value
// goes to the paired receiver and Send reports nil. For a file target
// Send reports a [FileError], and for a zero Address it reports
// [ErrNoTarget]; in both cases the value is discarded.
func (a Address[T]) Send(v T) error {
	switch a.kind {
	case targetMemory:
		a.s.Send(v)
		return nil
	case targetFile:
		return &FileError{FD: a.fd}
	default:
		return ErrNoTarget
	}
}

// Close declines to answer: a memory target's sender is retired so the
// waiting receiver observes a disconnect. Close has no effect on file
// or zero addresses, and is a no-op after a successful Send.
func (a Address[T]) Close() {
	if a.kind == targetMemory {
		a.s.Close()
	}
}

// String describes the target for diagnostics, without exposing the
// payload type's value.
func (a Address[T]) String() string {
	switch a.kind {
	case targetMemory:
		return "memory"
	case targetFile:
		return fmt.Sprintf("fd %d", a.fd)
	default:
		return "none"
	}
}
