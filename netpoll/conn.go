//go:build unix

package netpoll

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/opd-ai/udpsock/address"
	"golang.org/x/sys/unix"
)

// Descriptor is a raw OS socket descriptor.
type Descriptor int

// Conn is an open datagram handle owned by exactly one caller.
type Conn struct {
	conn  *net.UDPConn
	local netip.AddrPort
}

// Listen creates a datagram socket bound to addr. IPv4 addresses produce an
// AF_INET socket and IPv6 addresses an AF_INET6 socket.
func Listen(addr netip.AddrPort) (*Conn, error) {
	network := address.FamilyOf(addr).Network()
	conn, err := net.ListenUDP(network, net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return nil, err
	}
	return newConn(conn), nil
}

// Attach takes ownership of fd, which must be an AF_INET or AF_INET6
// SOCK_DGRAM socket. On success fd is consumed and must no longer be used by
// the caller. On failure fd is left untouched and still belongs to the caller.
func Attach(fd Descriptor) (*Conn, error) {
	if err := checkDatagram(int(fd)); err != nil {
		return nil, err
	}

	// FilePacketConn duplicates the descriptor it is given. Work on a private
	// duplicate so that the caller's descriptor survives any failure.
	dup, err := dupCloexec(int(fd))
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(dup), fmt.Sprintf("udp:%d", fd))
	pc, err := net.FilePacketConn(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, os.NewSyscallError("attach", unix.EPROTOTYPE)
	}

	if err := unix.Close(int(fd)); err != nil {
		_ = conn.Close()
		return nil, os.NewSyscallError("close", err)
	}
	return newConn(conn), nil
}

func newConn(conn *net.UDPConn) *Conn {
	c := &Conn{conn: conn}
	if ua, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		c.local = address.Normalize(ua.AddrPort())
	}
	return c
}

// checkDatagram verifies fd is an internet datagram socket.
func checkDatagram(fd int) error {
	soType, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return os.NewSyscallError("getsockopt", err)
	}
	if soType != unix.SOCK_DGRAM {
		return os.NewSyscallError("attach", unix.EPROTOTYPE)
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		return os.NewSyscallError("getsockname", err)
	}
	if _, err := address.FromSockaddr(sa); err != nil {
		return os.NewSyscallError("attach", unix.EAFNOSUPPORT)
	}
	return nil
}

func dupCloexec(fd int) (int, error) {
	nfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, os.NewSyscallError("fcntl", err)
	}
	return nfd, nil
}

// LocalAddr returns the address the socket is bound to.
func (c *Conn) LocalAddr() netip.AddrPort {
	return c.local
}

// SendTo issues one send of b to addr. Short writes are not retried.
func (c *Conn) SendTo(b []byte, addr netip.AddrPort, deadline time.Time) (int, error) {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return 0, err
	}
	return c.conn.WriteToUDPAddrPort(b, addr)
}

// RecvFrom issues one receive into b, waiting until a datagram arrives or
// deadline passes. n is the number of bytes written to b even when err is
// non-nil.
func (c *Conn) RecvFrom(b []byte, deadline time.Time) (int, netip.AddrPort, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, netip.AddrPort{}, err
	}
	n, from, err := c.conn.ReadFromUDPAddrPort(b)
	if n < 0 {
		n = 0
	}
	return n, address.Normalize(from), err
}

// Detach returns a close-on-exec duplicate of the socket descriptor in
// blocking mode and releases the Go side of the handle. If duplication fails
// the Conn is still usable.
func (c *Conn) Detach() (Descriptor, error) {
	rc, err := c.conn.SyscallConn()
	if err != nil {
		return -1, err
	}

	nfd := -1
	var dupErr error
	if err := rc.Control(func(fd uintptr) {
		nfd, dupErr = dupCloexec(int(fd))
	}); err != nil {
		return -1, err
	}
	if dupErr != nil {
		return -1, dupErr
	}

	_ = c.conn.Close()
	if err := unix.SetNonblock(nfd, false); err != nil {
		_ = unix.Close(nfd)
		return -1, os.NewSyscallError("fcntl", err)
	}
	return Descriptor(nfd), nil
}

// Close releases the socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}
