// Package netpoll provides the cooperative datagram runtime used by udpsock.
//
// A Conn wraps a *net.UDPConn, so every blocking call parks only the calling
// goroutine in the Go network poller while other goroutines keep running.
// The package exposes the small set of primitives a datagram socket needs:
//
//   - Listen: create a socket bound to a local address
//   - Attach: take ownership of an already-open descriptor
//   - SendTo: one send call, no retry on short writes
//   - RecvFrom: one receive call bounded by an absolute deadline
//   - Detach: hand the descriptor back out without closing it
//   - Close: release the descriptor
//
// Errors returned by these primitives are the runtime's native errors
// (*net.OpError, *os.SyscallError, syscall.Errno). Classify maps them to a
// small set of codes and Describe returns their description, which is what
// callers translate into their own error taxonomy.
//
// Deadlines follow the net.Conn convention: the zero time.Time means no
// deadline.
package netpoll
