package udpsock

import (
	"errors"
	"fmt"

	"github.com/opd-ai/udpsock/netpoll"
)

// Kind identifies the class of a socket failure.
type Kind uint8

const (
	// KindUnknown covers every runtime error without a dedicated kind
	KindUnknown Kind = iota
	// KindClosedSocket is an operation attempted after Close or Detach
	KindClosedSocket
	// KindBindFailed is a failure to create or bind a socket
	KindBindFailed
	// KindAttachFailed is a descriptor the runtime refused to adopt
	KindAttachFailed
	// KindConnectionResetByPeer is a reset indication from the peer
	KindConnectionResetByPeer
	// KindNoBufferSpaceAvailable is kernel buffer exhaustion
	KindNoBufferSpaceAvailable
	// KindOperationTimedOut is a deadline that elapsed before completion
	KindOperationTimedOut
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown error"
	case KindClosedSocket:
		return "closed socket"
	case KindBindFailed:
		return "bind failed"
	case KindAttachFailed:
		return "attach failed"
	case KindConnectionResetByPeer:
		return "connection reset by peer"
	case KindNoBufferSpaceAvailable:
		return "no buffer space available"
	case KindOperationTimedOut:
		return "operation timed out"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrUnknown                = errors.New("unknown error")
	ErrClosedSocket           = errors.New("closed socket")
	ErrBindFailed             = errors.New("bind failed")
	ErrAttachFailed           = errors.New("attach failed")
	ErrConnectionResetByPeer  = errors.New("connection reset by peer")
	ErrNoBufferSpaceAvailable = errors.New("no buffer space available")
	ErrOperationTimedOut      = errors.New("operation timed out")
)

var sentinels = map[Kind]error{
	KindUnknown:                ErrUnknown,
	KindClosedSocket:           ErrClosedSocket,
	KindBindFailed:             ErrBindFailed,
	KindAttachFailed:           ErrAttachFailed,
	KindConnectionResetByPeer:  ErrConnectionResetByPeer,
	KindNoBufferSpaceAvailable: ErrNoBufferSpaceAvailable,
	KindOperationTimedOut:      ErrOperationTimedOut,
}

// Error is the error type returned by every Socket operation.
//
// For receive failures Data holds the bytes the runtime delivered before the
// failure, trimmed to the reported count; it is empty, not nil, when nothing
// arrived. For send failures Data holds the unsent remainder of the payload.
type Error struct {
	Kind        Kind
	Op          string // operation that failed
	Addr        string // local or remote address if relevant
	Description string // runtime's description of the failure
	Data        []byte
	Err         error // underlying runtime error, nil for KindClosedSocket
}

func (e *Error) Error() string {
	desc := e.Description
	if desc == "" {
		desc = e.Kind.String()
	}
	if e.Addr != "" {
		return fmt.Sprintf("udp %s %s: %s", e.Op, e.Addr, desc)
	}
	return fmt.Sprintf("udp %s: %s", e.Op, desc)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// Timeout reports whether the operation failed because its deadline elapsed.
func (e *Error) Timeout() bool {
	return e.Kind == KindOperationTimedOut
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err is a KindOperationTimedOut error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrOperationTimedOut)
}

// IsClosed reports whether err is a KindClosedSocket error.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosedSocket)
}

// PartialData returns the payload carried by err, or nil.
func PartialData(err error) []byte {
	var e *Error
	if errors.As(err, &e) {
		return e.Data
	}
	return nil
}

func closedSocketError(op string) *Error {
	return &Error{
		Kind:        KindClosedSocket,
		Op:          op,
		Description: "Closed socket",
	}
}

// constructionError wraps a listen or attach failure.
func constructionError(kind Kind, op, addr string, err error) *Error {
	return &Error{
		Kind:        kind,
		Op:          op,
		Addr:        addr,
		Description: netpoll.Describe(err),
		Err:         err,
	}
}

// translate maps a runtime error to an *Error carrying data.
func translate(op, addr string, err error, data []byte) *Error {
	kind := KindUnknown
	switch netpoll.Classify(err) {
	case netpoll.CodeTimedOut:
		kind = KindOperationTimedOut
	case netpoll.CodeConnReset:
		kind = KindConnectionResetByPeer
	case netpoll.CodeNoBufs:
		kind = KindNoBufferSpaceAvailable
	}
	return &Error{
		Kind:        kind,
		Op:          op,
		Addr:        addr,
		Description: netpoll.Describe(err),
		Data:        data,
		Err:         err,
	}
}
