package udpsock

import (
	"bytes"
	"net/netip"
	"runtime"
	"strconv"

	"github.com/opd-ai/udpsock/address"
	"github.com/opd-ai/udpsock/limits"
	"github.com/opd-ai/udpsock/netpoll"
	"github.com/sirupsen/logrus"
)

// Descriptor is a raw OS socket descriptor that can be moved in and out of a
// Socket with Attach and Detach.
type Descriptor = netpoll.Descriptor

// socketState is either open or closed. A closed socket holds no handle.
type socketState interface {
	isSocketState()
}

type openState struct {
	handle Handle
}

type closedState struct{}

func (openState) isSocketState()   {}
func (closedState) isSocketState() {}

// Socket is a UDP socket with deadline-bound send and receive.
//
// A Socket owns exactly one handle while open. Close and Detach end that
// ownership; after either, every operation fails with KindClosedSocket
// without touching the handle. The zero Socket is closed and can be opened
// with Attach.
//
// A Socket is not safe for concurrent use. Callers sharing one between
// goroutines must serialize access themselves.
type Socket struct {
	state  socketState
	rt     Runtime
	logger logrus.FieldLogger
}

// Listen creates a socket bound to addr using default options.
func Listen(addr netip.AddrPort) (*Socket, error) {
	return ListenWithOptions(addr, nil)
}

// ListenWithOptions creates a socket bound to addr.
// Failures are reported as KindBindFailed.
func ListenWithOptions(addr netip.AddrPort, opts *Options) (*Socket, error) {
	opts = opts.withDefaults()

	h, err := opts.Runtime.Listen(addr)
	if err != nil {
		opts.Logger.WithFields(logrus.Fields{
			"addr":      addr.String(),
			"error":     err.Error(),
			"component": "Socket",
		}).Debug("Failed to bind socket")
		return nil, constructionError(KindBindFailed, "listen", addr.String(), err)
	}

	s := newSocket(h, opts)
	s.logger.WithFields(logrus.Fields{
		"local_addr": h.LocalAddr().String(),
		"component":  "Socket",
	}).Info("Created new UDP socket")
	return s, nil
}

// FromDescriptor creates a socket that takes ownership of fd using default
// options.
func FromDescriptor(fd Descriptor) (*Socket, error) {
	return FromDescriptorWithOptions(fd, nil)
}

// FromDescriptorWithOptions creates a socket that takes ownership of fd, for
// example one inherited from a parent process or returned by Detach.
// Failures are reported as KindAttachFailed and leave fd with the caller.
func FromDescriptorWithOptions(fd Descriptor, opts *Options) (*Socket, error) {
	opts = opts.withDefaults()

	h, err := opts.Runtime.Attach(fd)
	if err != nil {
		opts.Logger.WithFields(logrus.Fields{
			"fd":        int(fd),
			"error":     err.Error(),
			"component": "Socket",
		}).Debug("Failed to attach descriptor")
		return nil, constructionError(KindAttachFailed, "attach", fdString(fd), err)
	}

	s := newSocket(h, opts)
	s.logger.WithFields(logrus.Fields{
		"fd":         int(fd),
		"local_addr": h.LocalAddr().String(),
		"component":  "Socket",
	}).Info("Attached UDP socket")
	return s, nil
}

func newSocket(h Handle, opts *Options) *Socket {
	s := &Socket{
		state:  openState{handle: h},
		rt:     opts.Runtime,
		logger: opts.Logger,
	}
	runtime.SetFinalizer(s, (*Socket).release)
	return s
}

// handle returns the open handle, or false if the socket is closed.
func (s *Socket) handle() (Handle, bool) {
	open, ok := s.state.(openState)
	return open.handle, ok
}

func (s *Socket) log() logrus.FieldLogger {
	if s.logger == nil {
		return logrus.StandardLogger()
	}
	return s.logger
}

// Closed reports whether the socket has been closed or detached.
func (s *Socket) Closed() bool {
	_, ok := s.handle()
	return !ok
}

// LocalAddr returns the bound address, or the zero AddrPort when closed.
func (s *Socket) LocalAddr() netip.AddrPort {
	if h, ok := s.handle(); ok {
		return h.LocalAddr()
	}
	return netip.AddrPort{}
}

// Port returns the bound port, or 0 when closed.
func (s *Socket) Port() int {
	return int(s.LocalAddr().Port())
}

func (s *Socket) String() string {
	if s.Closed() {
		return "udp(closed)"
	}
	return "udp(" + s.LocalAddr().String() + ")"
}

// Send transmits data to dst as one datagram. There is no retry: a failed or
// short send is reported to the caller, with the unsent bytes in Error.Data.
// The runtime reporting no error is success, even when nothing was queued.
func (s *Socket) Send(data []byte, dst netip.AddrPort, deadline Deadline) error {
	h, ok := s.handle()
	if !ok {
		return closedSocketError("send")
	}

	n, err := h.SendTo(data, dst, deadline.runtimeDeadline())
	if err != nil {
		n = clampCount(n, len(data))
		e := translate("send", dst.String(), err, bytes.Clone(data[n:]))
		s.log().WithFields(logrus.Fields{
			"remote_addr": dst.String(),
			"bytes":       n,
			"kind":        e.Kind.String(),
			"error":       err.Error(),
			"component":   "Socket",
		}).Debug("Send failed")
		return e
	}
	return nil
}

// Receive waits for one datagram of at most maxLength bytes and returns its
// payload and sender. Only the calling goroutine blocks.
//
// The payload is always trimmed to the number of bytes the runtime delivered.
// On failure the *Error carries those bytes in Data, so a caller can tell a
// timeout with nothing received from a failure after partial delivery.
func (s *Socket) Receive(maxLength int, deadline Deadline) ([]byte, netip.AddrPort, error) {
	h, ok := s.handle()
	if !ok {
		return nil, netip.AddrPort{}, closedSocketError("receive")
	}
	if err := limits.ValidateReceiveLength(maxLength); err != nil {
		return nil, netip.AddrPort{}, &Error{
			Kind:        KindUnknown,
			Op:          "receive",
			Description: err.Error(),
			Data:        []byte{},
			Err:         err,
		}
	}

	buf := make([]byte, limits.ReceiveBufferSize(maxLength))
	n, from, err := h.RecvFrom(buf, deadline.runtimeDeadline())
	n = clampCount(n, len(buf))
	payload := buf[:n:n]

	if err != nil {
		e := translate("receive", h.LocalAddr().String(), err, payload)
		entry := s.log().WithFields(logrus.Fields{
			"local_addr": h.LocalAddr().String(),
			"bytes":      n,
			"kind":       e.Kind.String(),
			"component":  "Socket",
		})
		if n > 0 {
			entry.Warn("Receive failed after partial delivery")
		} else {
			entry.Debug("Receive failed")
		}
		return nil, netip.AddrPort{}, e
	}

	return payload, address.Normalize(from), nil
}

// Close releases the handle. Closing a closed socket fails with
// KindClosedSocket. The socket is closed afterwards even if the runtime
// reports an error on release.
func (s *Socket) Close() error {
	h, ok := s.handle()
	if !ok {
		return closedSocketError("close")
	}

	local := h.LocalAddr().String()
	err := h.Close()
	s.state = closedState{}
	if err != nil {
		return translate("close", local, err, nil)
	}

	s.log().WithFields(logrus.Fields{
		"local_addr": local,
		"component":  "Socket",
	}).Debug("Closed UDP socket")
	return nil
}

// Detach transfers ownership of the underlying descriptor to the caller and
// closes the socket without releasing the descriptor. If the runtime cannot
// produce the descriptor the socket stays open.
func (s *Socket) Detach() (Descriptor, error) {
	h, ok := s.handle()
	if !ok {
		return -1, closedSocketError("detach")
	}

	local := h.LocalAddr().String()
	fd, err := h.Detach()
	if err != nil {
		return -1, translate("detach", local, err, nil)
	}
	s.state = closedState{}

	s.log().WithFields(logrus.Fields{
		"fd":         int(fd),
		"local_addr": local,
		"component":  "Socket",
	}).Debug("Detached UDP socket")
	return fd, nil
}

// Attach closes the current handle, if any, and takes ownership of fd.
// If fd is rejected the socket is left closed and the error is
// KindAttachFailed; fd then still belongs to the caller.
func (s *Socket) Attach(fd Descriptor) error {
	if h, ok := s.handle(); ok {
		local := h.LocalAddr().String()
		err := h.Close()
		s.state = closedState{}
		if err != nil {
			s.log().WithFields(logrus.Fields{
				"local_addr": local,
				"error":      err.Error(),
				"component":  "Socket",
			}).Warn("Error releasing handle before attach")
		}
	}

	rt := s.rt
	if rt == nil {
		rt = DefaultRuntime()
	}
	h, err := rt.Attach(fd)
	if err != nil {
		return constructionError(KindAttachFailed, "attach", fdString(fd), err)
	}
	s.state = openState{handle: h}

	s.log().WithFields(logrus.Fields{
		"fd":         int(fd),
		"local_addr": h.LocalAddr().String(),
		"component":  "Socket",
	}).Debug("Attached descriptor to UDP socket")
	return nil
}

// release closes the handle of a socket that is still open. It runs as the
// finalizer, so a socket dropped without Close releases its handle once, and
// a closed or detached socket releases nothing.
func (s *Socket) release() {
	h, ok := s.handle()
	if !ok {
		return
	}
	s.state = closedState{}
	_ = h.Close()

	s.log().WithFields(logrus.Fields{
		"local_addr": h.LocalAddr().String(),
		"component":  "Socket",
	}).Debug("Released handle of unreachable socket")
}

func clampCount(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

func fdString(fd Descriptor) string {
	return "fd " + strconv.Itoa(int(fd))
}
