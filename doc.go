// Package udpsock implements a UDP datagram socket with deadline-bound send
// and receive, a typed error taxonomy and explicit descriptor ownership.
//
// # Getting Started
//
// Bind a socket, send a datagram and wait for a reply:
//
//	sock, err := udpsock.Listen(netip.MustParseAddrPort("127.0.0.1:0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sock.Close()
//
//	err = sock.Send([]byte("hello"), peer, udpsock.Never)
//
//	payload, from, err := sock.Receive(1500, udpsock.After(2*time.Second))
//	switch {
//	case udpsock.IsTimeout(err):
//	    // nothing arrived in time; retry or give up
//	case err != nil:
//	    partial := udpsock.PartialData(err) // bytes delivered before the failure
//	    _ = partial
//	default:
//	    fmt.Printf("%d bytes from %s\n", len(payload), from)
//	}
//
// # Lifecycle
//
// A [Socket] is either open, owning one handle, or closed. It becomes closed
// through [Socket.Close] or [Socket.Detach] and never reopens except through
// [Socket.Attach]. Operations on a closed socket fail with KindClosedSocket
// before the handle is touched, and closing twice is an error rather than a
// no-op.
//
// Descriptors move across the boundary with [FromDescriptor], [Socket.Attach]
// and [Socket.Detach]. A detached descriptor belongs to the caller; the socket
// never releases it. A socket that becomes unreachable while still open
// releases its handle once from a finalizer.
//
// # Errors
//
// Every operation returns *[Error]. Callers branch on [Error.Kind] or use
// errors.Is with the sentinel values:
//
//   - [ErrClosedSocket]: use after Close or Detach, always detected locally
//   - [ErrBindFailed], [ErrAttachFailed]: construction failures
//   - [ErrConnectionResetByPeer]: a reset indication from the peer
//   - [ErrNoBufferSpaceAvailable]: kernel buffer exhaustion
//   - [ErrOperationTimedOut]: the deadline elapsed
//   - [ErrUnknown]: anything else
//
// Receive errors carry the bytes the runtime delivered before the failure in
// [Error.Data]; send errors carry the unsent remainder.
//
// # Concurrency
//
// Send and Receive park only the calling goroutine in the Go network poller.
// Cancellation is expressed through [Deadline] alone and nothing is retried
// internally. A Socket has no internal locking and must have one owner at a
// time.
package udpsock
