package udpsock

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestErrorString(t *testing.T) {
	t.Run("Error with address", func(t *testing.T) {
		err := &Error{
			Kind:        KindConnectionResetByPeer,
			Op:          "receive",
			Addr:        "127.0.0.1:9000",
			Description: "connection reset by peer",
		}
		expected := "udp receive 127.0.0.1:9000: connection reset by peer"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Error without address", func(t *testing.T) {
		err := closedSocketError("send")
		expected := "udp send: Closed socket"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Kind used when description is empty", func(t *testing.T) {
		err := &Error{Kind: KindNoBufferSpaceAvailable, Op: "send"}
		expected := "udp send: no buffer space available"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})
}

func TestErrorIsMatchesOwnKindOnly(t *testing.T) {
	kinds := []Kind{
		KindUnknown,
		KindClosedSocket,
		KindBindFailed,
		KindAttachFailed,
		KindConnectionResetByPeer,
		KindNoBufferSpaceAvailable,
		KindOperationTimedOut,
	}
	for _, kind := range kinds {
		err := fmt.Errorf("wrapped: %w", &Error{Kind: kind, Op: "test"})
		for _, other := range kinds {
			got := errors.Is(err, sentinels[other])
			if got != (kind == other) {
				t.Errorf("errors.Is(%v, %v) = %v", kind, other, got)
			}
		}
		if KindOf(err) != kind {
			t.Errorf("KindOf = %v, want %v", KindOf(err), kind)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := os.NewSyscallError("recvfrom", unix.ECONNRESET)
	err := translate("receive", "", underlying, []byte{})
	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if !errors.Is(err, unix.ECONNRESET) {
		t.Error("errors.Is should find the errno through the chain")
	}
	if closedSocketError("close").Unwrap() != nil {
		t.Error("closed socket errors are local and wrap nothing")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantDesc string
	}{
		{"deadline", os.ErrDeadlineExceeded, KindOperationTimedOut, "i/o timeout"},
		{"etimedout", os.NewSyscallError("recvfrom", unix.ETIMEDOUT), KindOperationTimedOut, unix.ETIMEDOUT.Error()},
		{"reset", os.NewSyscallError("recvfrom", unix.ECONNRESET), KindConnectionResetByPeer, unix.ECONNRESET.Error()},
		{"nobufs", os.NewSyscallError("sendto", unix.ENOBUFS), KindNoBufferSpaceAvailable, unix.ENOBUFS.Error()},
		{"other errno", os.NewSyscallError("sendto", unix.EMSGSIZE), KindUnknown, unix.EMSGSIZE.Error()},
		{"plain", errors.New("boom"), KindUnknown, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate("op", "", tt.err, nil)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestHelpersOnForeignErrors(t *testing.T) {
	plain := errors.New("not ours")
	if KindOf(plain) != KindUnknown {
		t.Error("foreign errors should report KindUnknown")
	}
	if IsTimeout(plain) || IsClosed(plain) {
		t.Error("foreign errors are neither timeouts nor closed-socket errors")
	}
	if PartialData(plain) != nil {
		t.Error("foreign errors carry no data")
	}
	if KindOf(nil) != KindUnknown || PartialData(nil) != nil {
		t.Error("nil error helpers should return zero values")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindUnknown:                "unknown error",
		KindClosedSocket:           "closed socket",
		KindBindFailed:             "bind failed",
		KindAttachFailed:           "attach failed",
		KindConnectionResetByPeer:  "connection reset by peer",
		KindNoBufferSpaceAvailable: "no buffer space available",
		KindOperationTimedOut:      "operation timed out",
		Kind(99):                   "Kind(99)",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(kind), kind.String(), want)
		}
	}
}
