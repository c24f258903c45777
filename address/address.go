package address

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Family is the address family a socket is created with.
type Family uint8

const (
	// FamilyUnknown represents an invalid or unsupported address
	FamilyUnknown Family = iota
	// FamilyIPv4 represents IPv4 (AF_INET) addresses
	FamilyIPv4
	// FamilyIPv6 represents IPv6 (AF_INET6) addresses
	FamilyIPv6
)

// String returns a human-readable representation of the Family.
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	case FamilyUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Network returns the Go network name for datagram sockets of this family.
func (f Family) Network() string {
	switch f {
	case FamilyIPv4:
		return "udp4"
	case FamilyIPv6:
		return "udp6"
	default:
		return "udp"
	}
}

var (
	// ErrInvalidAddress indicates the address could not be parsed
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNoAddress indicates a host name resolved to no usable address
	ErrNoAddress = errors.New("no address found")
)

// FamilyOf reports the family of ap. IPv4-mapped IPv6 addresses are IPv6.
func FamilyOf(ap netip.AddrPort) Family {
	addr := ap.Addr()
	switch {
	case !addr.IsValid():
		return FamilyUnknown
	case addr.Is4():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// Normalize unmaps IPv4-mapped IPv6 addresses so that datagrams from the same
// IPv4 peer compare equal regardless of the socket family they arrived on.
func Normalize(ap netip.AddrPort) netip.AddrPort {
	if !ap.IsValid() {
		return ap
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// Parse parses a literal "host:port" address. An empty host means the IPv4
// unspecified address, matching the ":port" form accepted by net.ListenPacket.
func Parse(s string) (netip.AddrPort, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if host == "" {
		return netip.AddrPortFrom(netip.IPv4Unspecified(), port), nil
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return netip.AddrPortFrom(addr, port), nil
}

// Resolve resolves "host:port", looking host up through net.DefaultResolver
// when it is not an IP literal. IPv4 results are preferred.
func Resolve(ctx context.Context, s string) (netip.AddrPort, error) {
	if ap, err := Parse(s); err == nil {
		return ap, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return netip.AddrPort{}, err
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolve %s: %w", host, err)
	}

	addr, ok := pickAddr(addrs)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("%w for %s", ErrNoAddress, host)
	}
	return netip.AddrPortFrom(addr, port), nil
}

// pickAddr returns the first IPv4 address, falling back to the first valid one.
func pickAddr(addrs []netip.Addr) (netip.Addr, bool) {
	var fallback netip.Addr
	for _, a := range addrs {
		a = a.Unmap()
		if a.Is4() {
			return a, true
		}
		if !fallback.IsValid() && a.IsValid() {
			fallback = a
		}
	}
	return fallback, fallback.IsValid()
}

func parsePort(s string) (uint16, error) {
	if s == "" {
		return 0, nil
	}
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		if port, lerr := net.LookupPort("udp", s); lerr == nil {
			return uint16(port), nil
		}
		return 0, fmt.Errorf("%w: port %q", ErrInvalidAddress, s)
	}
	return uint16(p), nil
}
