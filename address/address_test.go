package address

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyString(t *testing.T) {
	tests := []struct {
		family Family
		want   string
	}{
		{FamilyIPv4, "IPv4"},
		{FamilyIPv6, "IPv6"},
		{FamilyUnknown, "Unknown"},
		{Family(42), "Family(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.family.String())
	}
}

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		name    string
		addr    netip.AddrPort
		family  Family
		network string
	}{
		{"ipv4", netip.MustParseAddrPort("127.0.0.1:53"), FamilyIPv4, "udp4"},
		{"ipv6", netip.MustParseAddrPort("[::1]:53"), FamilyIPv6, "udp6"},
		{"mapped", netip.MustParseAddrPort("[::ffff:10.0.0.1]:53"), FamilyIPv6, "udp6"},
		{"invalid", netip.AddrPort{}, FamilyUnknown, "udp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.family, FamilyOf(tt.addr))
			assert.Equal(t, tt.network, FamilyOf(tt.addr).Network())
		})
	}
}

func TestNormalize(t *testing.T) {
	mapped := netip.MustParseAddrPort("[::ffff:192.0.2.7]:4000")
	assert.Equal(t, netip.MustParseAddrPort("192.0.2.7:4000"), Normalize(mapped))

	plain := netip.MustParseAddrPort("[2001:db8::1]:4000")
	assert.Equal(t, plain, Normalize(plain))

	assert.False(t, Normalize(netip.AddrPort{}).IsValid())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    netip.AddrPort
		wantErr bool
	}{
		{"ipv4", "192.0.2.1:8080", netip.MustParseAddrPort("192.0.2.1:8080"), false},
		{"ipv6", "[2001:db8::1]:443", netip.MustParseAddrPort("[2001:db8::1]:443"), false},
		{"empty host", ":9000", netip.MustParseAddrPort("0.0.0.0:9000"), false},
		{"empty port", "127.0.0.1:", netip.MustParseAddrPort("127.0.0.1:0"), false},
		{"missing port", "127.0.0.1", netip.AddrPort{}, true},
		{"host name", "example.com:80", netip.AddrPort{}, true},
		{"port out of range", "127.0.0.1:70000", netip.AddrPort{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLiteral(t *testing.T) {
	ap, err := Resolve(context.Background(), "10.1.2.3:77")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddrPort("10.1.2.3:77"), ap)
}

func TestResolveLocalhost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ap, err := Resolve(ctx, "localhost:5353")
	if err != nil {
		t.Skipf("localhost does not resolve on this host: %v", err)
	}
	assert.True(t, ap.Addr().IsLoopback(), "localhost resolved to %s", ap)
	assert.Equal(t, uint16(5353), ap.Port())
}

func TestPickAddrPrefersIPv4(t *testing.T) {
	addrs := []netip.Addr{
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddr("::ffff:198.51.100.1"),
	}
	got, ok := pickAddr(addrs)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("198.51.100.1"), got)

	got, ok = pickAddr(addrs[:1])
	require.True(t, ok)
	assert.Equal(t, addrs[0], got)

	_, ok = pickAddr(nil)
	assert.False(t, ok)
}
