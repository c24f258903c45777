// Package address converts between textual addresses, net/netip values and
// the low-level socket address structures used by the datagram runtime.
//
// Addresses are carried as netip.AddrPort throughout the udpsock packages.
// The family of an address decides which socket family a listener is created
// with:
//
//	ap, err := address.Parse("127.0.0.1:9000")
//	network := address.FamilyOf(ap).Network() // "udp4"
//
// Resolve accepts host names as well as literals:
//
//	ap, err := address.Resolve(ctx, "localhost:9000")
//
// ToSockaddr and FromSockaddr translate to and from golang.org/x/sys/unix
// address structures for code that works with raw descriptors.
package address
