package udpsock

import (
	"net/netip"
	"time"

	"github.com/opd-ai/udpsock/netpoll"
	"github.com/sirupsen/logrus"
)

// Handle is an open runtime-level datagram handle. *netpoll.Conn is the
// production implementation.
type Handle interface {
	LocalAddr() netip.AddrPort
	SendTo(b []byte, addr netip.AddrPort, deadline time.Time) (int, error)
	RecvFrom(b []byte, deadline time.Time) (int, netip.AddrPort, error)
	Detach() (netpoll.Descriptor, error)
	Close() error
}

// Runtime creates handles.
type Runtime interface {
	Listen(addr netip.AddrPort) (Handle, error)
	Attach(fd netpoll.Descriptor) (Handle, error)
}

// netpollRuntime is the default Runtime backed by package netpoll.
type netpollRuntime struct{}

func (netpollRuntime) Listen(addr netip.AddrPort) (Handle, error) {
	c, err := netpoll.Listen(addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (netpollRuntime) Attach(fd netpoll.Descriptor) (Handle, error) {
	c, err := netpoll.Attach(fd)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultRuntime returns the runtime backed by the Go network poller.
func DefaultRuntime() Runtime {
	return netpollRuntime{}
}

// Options contains configuration for a Socket.
type Options struct {
	// Runtime creates the underlying handles. Nil means DefaultRuntime().
	Runtime Runtime
	// Logger receives lifecycle and failure events. Nil means logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// NewOptions creates a new default options.
func NewOptions() *Options {
	return &Options{
		Runtime: DefaultRuntime(),
		Logger:  logrus.StandardLogger(),
	}
}

func (o *Options) withDefaults() *Options {
	resolved := NewOptions()
	if o == nil {
		return resolved
	}
	if o.Runtime != nil {
		resolved.Runtime = o.Runtime
	}
	if o.Logger != nil {
		resolved.Logger = o.Logger
	}
	return resolved
}
