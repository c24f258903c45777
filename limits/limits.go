// Package limits provides centralized datagram size limits for UDP sockets.
// This ensures consistent validation across the socket, the runtime and the CLI.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxDatagramSize is the largest UDP datagram the length field can describe (65535 bytes).
	// Receive buffers are never allocated beyond this size.
	MaxDatagramSize = 65535

	// UDPHeaderSize is the fixed size of the UDP header
	UDPHeaderSize = 8

	// MaxIPv4Payload is the largest payload deliverable over IPv4
	// (65535 - 20 byte IPv4 header - 8 byte UDP header)
	MaxIPv4Payload = MaxDatagramSize - 20 - UDPHeaderSize

	// MaxIPv6Payload is the largest payload deliverable over IPv6 without jumbograms.
	// The IPv6 payload length field excludes the 40 byte fixed header.
	MaxIPv6Payload = MaxDatagramSize - UDPHeaderSize

	// DefaultReceiveSize is a receive length that fits any datagram on an Ethernet path
	DefaultReceiveSize = 1500
)

var (
	// ErrNegativeLength indicates a negative receive length was requested
	ErrNegativeLength = errors.New("negative length")

	// ErrPayloadTooLarge indicates a payload exceeds what one datagram can carry
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidateReceiveLength validates the maximum payload length a caller is
// willing to accept. Zero is valid and yields an empty payload.
func ValidateReceiveLength(maxLength int) error {
	if maxLength < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeLength, maxLength)
	}
	return nil
}

// ReceiveBufferSize returns the buffer size to allocate for a receive of
// maxLength bytes. Negative lengths yield zero.
func ReceiveBufferSize(maxLength int) int {
	if maxLength <= 0 {
		return 0
	}
	if maxLength > MaxDatagramSize {
		return MaxDatagramSize
	}
	return maxLength
}

// ValidatePayload validates a payload against the per-family maximum.
// Returns an error with context including the actual and maximum sizes.
func ValidatePayload(payload []byte, ipv6 bool) error {
	limit := MaxIPv4Payload
	if ipv6 {
		limit = MaxIPv6Payload
	}
	if len(payload) > limit {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPayloadTooLarge, len(payload), limit)
	}
	return nil
}
