//go:build unix

package address

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSockaddrRoundTrip(t *testing.T) {
	tests := []string{
		"127.0.0.1:9000",
		"0.0.0.0:0",
		"[::1]:9000",
		"[2001:db8::42]:65535",
		"[::ffff:10.0.0.1]:1",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			ap := netip.MustParseAddrPort(s)
			sa, err := ToSockaddr(ap)
			require.NoError(t, err)

			back, err := FromSockaddr(sa)
			require.NoError(t, err)
			assert.Equal(t, ap, back)
		})
	}
}

func TestToSockaddrFamilies(t *testing.T) {
	sa, err := ToSockaddr(netip.MustParseAddrPort("192.0.2.1:53"))
	require.NoError(t, err)
	v4, ok := sa.(*unix.SockaddrInet4)
	require.True(t, ok, "got %T", sa)
	assert.Equal(t, 53, v4.Port)
	assert.Equal(t, [4]byte{192, 0, 2, 1}, v4.Addr)

	sa, err = ToSockaddr(netip.MustParseAddrPort("[::ffff:192.0.2.1]:53"))
	require.NoError(t, err)
	_, ok = sa.(*unix.SockaddrInet6)
	assert.True(t, ok, "mapped address should stay AF_INET6, got %T", sa)
}

func TestToSockaddrNumericZone(t *testing.T) {
	ap := netip.AddrPortFrom(netip.MustParseAddr("fe80::1").WithZone("4242"), 80)
	sa, err := ToSockaddr(ap)
	require.NoError(t, err)
	v6 := sa.(*unix.SockaddrInet6)
	assert.Equal(t, uint32(4242), v6.ZoneId)
}

func TestSockaddrErrors(t *testing.T) {
	_, err := ToSockaddr(netip.AddrPort{})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ToSockaddr(netip.AddrPortFrom(netip.MustParseAddr("fe80::1").WithZone("no-such-zone"), 1))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = FromSockaddr(&unix.SockaddrUnix{Name: "/tmp/sock"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
