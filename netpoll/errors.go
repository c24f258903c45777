//go:build unix

package netpoll

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Code is the runtime's classification of the last error of an operation.
type Code uint8

const (
	// CodeOK means the operation reported no error
	CodeOK Code = iota
	// CodeTimedOut means the deadline elapsed or the kernel reported ETIMEDOUT
	CodeTimedOut
	// CodeConnReset means the peer sent a reset indication (ECONNRESET)
	CodeConnReset
	// CodeNoBufs means kernel buffer space was exhausted (ENOBUFS)
	CodeNoBufs
	// CodeOther covers every other failure
	CodeOther
)

// String returns a human-readable representation of the Code.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeTimedOut:
		return "timed out"
	case CodeConnReset:
		return "connection reset"
	case CodeNoBufs:
		return "no buffer space"
	default:
		return "other"
	}
}

// Classify returns the Code for an error returned by a Conn primitive.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, unix.ETIMEDOUT):
		return CodeTimedOut
	case errors.Is(err, unix.ECONNRESET):
		return CodeConnReset
	case errors.Is(err, unix.ENOBUFS):
		return CodeNoBufs
	default:
		return CodeOther
	}
}

// Describe returns the runtime's description of err. When an errno is in the
// chain its strerror text is used; otherwise the full error string.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return os.ErrDeadlineExceeded.Error()
	}
	return err.Error()
}
