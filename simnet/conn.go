package simnet

import (
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/opd-ai/udpsock/address"
	"github.com/opd-ai/udpsock/netpoll"
	"golang.org/x/sys/unix"
)

// Conn is a simulated handle bound to one endpoint.
type Conn struct {
	net  *Network
	ep   *endpoint
	done chan struct{}
	once sync.Once
}

func newConn(n *Network, ep *endpoint) *Conn {
	return &Conn{net: n, ep: ep, done: make(chan struct{})}
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// LocalAddr returns the bound address.
func (c *Conn) LocalAddr() netip.AddrPort {
	return c.ep.local
}

// SendTo delivers b to addr. Sending to an address of another family fails
// with EAFNOSUPPORT, as the kernel would.
func (c *Conn) SendTo(b []byte, addr netip.AddrPort, deadline time.Time) (int, error) {
	if c.closed() {
		return 0, errClosed
	}
	if c.expired(deadline) {
		return 0, os.ErrDeadlineExceeded
	}
	if address.FamilyOf(addr) != address.FamilyOf(c.ep.local) {
		return 0, os.NewSyscallError("sendto", unix.EAFNOSUPPORT)
	}
	c.net.deliver(c.ep.local, addr, b)
	return len(b), nil
}

// RecvFrom waits for a datagram, an injected fault, Close or the deadline.
func (c *Conn) RecvFrom(b []byte, deadline time.Time) (int, netip.AddrPort, error) {
	if c.closed() {
		return 0, netip.AddrPort{}, errClosed
	}
	if f, ok := c.net.takeFault(c.ep.local); ok {
		return copy(b, f.Payload), netip.AddrPort{}, f.Err
	}
	if c.expired(deadline) {
		return 0, netip.AddrPort{}, os.ErrDeadlineExceeded
	}

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		clock := c.net.timeProvider()
		timer := clock.NewTimer(deadline.Sub(clock.Now()))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case d := <-c.ep.inbox:
		return copy(b, d.payload), d.from, nil
	case <-c.done:
		return 0, netip.AddrPort{}, errClosed
	case <-timeout:
		return 0, netip.AddrPort{}, os.ErrDeadlineExceeded
	}
}

// Detach parks the endpoint under a new descriptor and closes the Conn. The
// endpoint stays bound until the descriptor is attached or closed.
func (c *Conn) Detach() (netpoll.Descriptor, error) {
	if c.closed() {
		return -1, errClosed
	}
	fd := c.net.park(c.ep)
	c.once.Do(func() { close(c.done) })
	return fd, nil
}

// Close unbinds the endpoint.
func (c *Conn) Close() error {
	if c.closed() {
		return errClosed
	}
	c.once.Do(func() { close(c.done) })
	c.net.unbind(c.ep)
	return nil
}

func (c *Conn) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !c.net.timeProvider().Now().Before(deadline)
}
