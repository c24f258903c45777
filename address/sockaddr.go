//go:build unix

package address

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// ToSockaddr converts ap to the low-level address structure used by the
// socket system calls. IPv4-mapped addresses stay AF_INET6 so they can be
// used with dual-stack sockets.
func ToSockaddr(ap netip.AddrPort) (unix.Sockaddr, error) {
	addr := ap.Addr()
	switch {
	case !addr.IsValid():
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, ap)
	case addr.Is4():
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: addr.As4()}, nil
	default:
		sa := &unix.SockaddrInet6{Port: int(ap.Port()), Addr: addr.As16()}
		if zone := addr.Zone(); zone != "" {
			id, err := zoneID(zone)
			if err != nil {
				return nil, err
			}
			sa.ZoneId = id
		}
		return sa, nil
	}
}

// FromSockaddr decodes an AF_INET or AF_INET6 address structure.
func FromSockaddr(sa unix.Sockaddr) (netip.AddrPort, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), nil
	case *unix.SockaddrInet6:
		addr := netip.AddrFrom16(sa.Addr)
		if sa.ZoneId != 0 {
			addr = addr.WithZone(zoneName(sa.ZoneId))
		}
		return netip.AddrPortFrom(addr, uint16(sa.Port)), nil
	default:
		return netip.AddrPort{}, fmt.Errorf("%w: unsupported sockaddr %T", ErrInvalidAddress, sa)
	}
}

func zoneID(zone string) (uint32, error) {
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index), nil
	}
	id, err := strconv.ParseUint(zone, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown zone %q", ErrInvalidAddress, zone)
	}
	return uint32(id), nil
}

func zoneName(id uint32) string {
	if ifi, err := net.InterfaceByIndex(int(id)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(id), 10)
}
