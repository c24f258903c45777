// Package simnet provides an in-memory datagram network for deterministic
// testing of code built on udpsock.
//
// # Simulation vs Real Runtime
//
// udpsock sockets obtain their handles from a udpsock.Runtime:
//
//   - Real (netpoll package): handles are OS sockets driven by the Go network
//     poller. This is udpsock.DefaultRuntime().
//
//   - Simulation (this package): handles are in-memory endpoints on a Network.
//     Datagrams are delivered through per-endpoint queues and every delivery
//     is recorded for verification.
//
// # Usage
//
//	network := simnet.NewNetwork()
//	a, _ := udpsock.ListenWithOptions(netip.MustParseAddrPort("10.0.0.1:0"), network.Options())
//	b, _ := udpsock.ListenWithOptions(netip.MustParseAddrPort("10.0.0.2:0"), network.Options())
//
//	_ = b.Send([]byte("hi"), a.LocalAddr(), udpsock.Never)
//	payload, from, _ := a.Receive(64, udpsock.After(time.Second))
//
// # Fault Injection
//
// Failures a real network produces only rarely can be scripted per endpoint.
// The next receive on the endpoint writes Payload into the caller's buffer
// and returns Err:
//
//	network.InjectReceiveFault(a.LocalAddr(), simnet.Fault{
//	    Payload: []byte("par"),
//	    Err:     os.NewSyscallError("recvfrom", unix.ECONNRESET),
//	})
//
// # Descriptors
//
// Detach parks an endpoint under a simulated descriptor number that Attach
// accepts back. StreamDescriptor returns a descriptor Attach rejects with
// EPROTOTYPE, and CloseDescriptor releases a parked endpoint.
//
// # Delivery Log
//
// GetDeliveryLog returns one DeliveryRecord per send, including datagrams
// dropped because no endpoint was bound or its queue was full. GetStats
// summarizes the log.
package simnet
