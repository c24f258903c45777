// Package limits provides centralized datagram size constants and validation
// functions for the udpsock packages.
//
// # Size Hierarchy
//
//   - MaxDatagramSize (65535 bytes): the largest value of the UDP length field.
//     Receive buffers are capped at this size no matter what length a caller asks for.
//
//   - MaxIPv4Payload (65507 bytes): MaxDatagramSize minus the IPv4 and UDP headers.
//
//   - MaxIPv6Payload (65527 bytes): MaxDatagramSize minus the UDP header.
//
//   - DefaultReceiveSize (1500 bytes): a receive length that fits an Ethernet MTU.
//
// # Validation Functions
//
//	if err := limits.ValidateReceiveLength(n); err != nil {
//	    // errors.Is(err, limits.ErrNegativeLength)
//	}
//
//	if err := limits.ValidatePayload(msg, false); err != nil {
//	    // errors.Is(err, limits.ErrPayloadTooLarge)
//	}
//
// The socket itself does not reject oversize payloads on send: the kernel
// reports EMSGSIZE and the error is surfaced unchanged. ValidatePayload is for
// callers (such as cmd/udpecho) that want to fail early.
package limits
