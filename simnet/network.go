package simnet

import (
	"net"
	"net/netip"
	"os"
	"sync"

	"github.com/opd-ai/udpsock"
	"github.com/opd-ai/udpsock/address"
	"github.com/opd-ai/udpsock/netpoll"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	// firstEphemeralPort is the first port handed out for binds to port 0
	firstEphemeralPort = 40000
	// firstDescriptor is the first descriptor number handed out by Detach
	firstDescriptor = 1000
	// inboxSize is the number of datagrams queued per endpoint before drops
	inboxSize = 64
)

// DeliveryRecord represents a datagram delivery event for test verification
type DeliveryRecord struct {
	From      netip.AddrPort
	To        netip.AddrPort
	Size      int
	Timestamp int64
	Success   bool
	Reason    string // why the datagram was dropped
}

// Fault scripts the outcome of the next receive on an endpoint: Payload is
// written to the caller's buffer and Err is returned with its length.
type Fault struct {
	Payload []byte
	Err     error
}

// Stats summarizes the delivery log.
type Stats struct {
	Endpoints  int
	Deliveries int
	Dropped    int
}

// datagram is one queued message.
type datagram struct {
	from    netip.AddrPort
	payload []byte
}

// endpoint is a bound address. It outlives a Conn across Detach and Attach.
type endpoint struct {
	local netip.AddrPort
	inbox chan datagram
}

// descriptor is what a simulated descriptor number refers to.
type descriptor struct {
	ep     *endpoint
	stream bool
}

// Network is an in-memory datagram network implementing udpsock.Runtime.
type Network struct {
	mu          sync.Mutex
	endpoints   map[netip.AddrPort]*endpoint
	descriptors map[netpoll.Descriptor]descriptor
	faults      map[netip.AddrPort][]Fault
	deliveryLog []DeliveryRecord
	nextPort    uint16
	nextFD      netpoll.Descriptor
	logger      logrus.FieldLogger
	clock       TimeProvider
}

var _ udpsock.Runtime = (*Network)(nil)

// NewNetwork creates an empty simulated network.
func NewNetwork() *Network {
	return &Network{
		endpoints:   make(map[netip.AddrPort]*endpoint),
		descriptors: make(map[netpoll.Descriptor]descriptor),
		faults:      make(map[netip.AddrPort][]Fault),
		nextPort:    firstEphemeralPort,
		nextFD:      firstDescriptor,
		logger:      logrus.StandardLogger(),
		clock:       RealTimeProvider{},
	}
}

// SetLogger replaces the logger used for drop events.
func (n *Network) SetLogger(logger logrus.FieldLogger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger = logger
}

// Options returns socket options that route through this network.
func (n *Network) Options() *udpsock.Options {
	opts := udpsock.NewOptions()
	opts.Runtime = n
	return opts
}

// Listen binds a simulated endpoint. Port 0 picks an unused port.
func (n *Network) Listen(addr netip.AddrPort) (udpsock.Handle, error) {
	if address.FamilyOf(addr) == address.FamilyUnknown {
		return nil, os.NewSyscallError("bind", unix.EINVAL)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if addr.Port() == 0 {
		addr = netip.AddrPortFrom(addr.Addr(), n.allocatePort(addr.Addr()))
	}
	if _, inUse := n.endpoints[addr]; inUse {
		return nil, os.NewSyscallError("bind", unix.EADDRINUSE)
	}

	ep := &endpoint{local: addr, inbox: make(chan datagram, inboxSize)}
	n.endpoints[addr] = ep
	return newConn(n, ep), nil
}

func (n *Network) allocatePort(ip netip.Addr) uint16 {
	for {
		port := n.nextPort
		n.nextPort++
		if n.nextPort == 0 {
			n.nextPort = firstEphemeralPort
		}
		if _, inUse := n.endpoints[netip.AddrPortFrom(ip, port)]; !inUse {
			return port
		}
	}
}

// Attach adopts a descriptor previously returned by Detach.
func (n *Network) Attach(fd netpoll.Descriptor) (udpsock.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	d, ok := n.descriptors[fd]
	if !ok {
		return nil, os.NewSyscallError("getsockopt", unix.EBADF)
	}
	if d.stream {
		return nil, os.NewSyscallError("attach", unix.EPROTOTYPE)
	}
	delete(n.descriptors, fd)
	return newConn(n, d.ep), nil
}

// StreamDescriptor returns a descriptor for a simulated stream socket, which
// Attach rejects.
func (n *Network) StreamDescriptor() netpoll.Descriptor {
	n.mu.Lock()
	defer n.mu.Unlock()

	fd := n.allocateFD()
	n.descriptors[fd] = descriptor{stream: true}
	return fd
}

// CloseDescriptor releases a descriptor the caller owns, as close(2) would.
func (n *Network) CloseDescriptor(fd netpoll.Descriptor) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	d, ok := n.descriptors[fd]
	if !ok {
		return os.NewSyscallError("close", unix.EBADF)
	}
	delete(n.descriptors, fd)
	if d.ep != nil {
		delete(n.endpoints, d.ep.local)
	}
	return nil
}

// OpenDescriptors reports how many descriptors are held outside any Conn.
func (n *Network) OpenDescriptors() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.descriptors)
}

func (n *Network) allocateFD() netpoll.Descriptor {
	fd := n.nextFD
	n.nextFD++
	return fd
}

// InjectReceiveFault queues f for the next receive on addr.
func (n *Network) InjectReceiveFault(addr netip.AddrPort, f Fault) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.faults[addr] = append(n.faults[addr], f)
}

func (n *Network) takeFault(addr netip.AddrPort) (Fault, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	queued := n.faults[addr]
	if len(queued) == 0 {
		return Fault{}, false
	}
	n.faults[addr] = queued[1:]
	return queued[0], true
}

// deliver queues payload on the endpoint bound to to. Like UDP, a datagram
// with no receiver or a full queue is dropped without an error to the sender.
func (n *Network) deliver(from, to netip.AddrPort, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	record := DeliveryRecord{
		From:      from,
		To:        to,
		Size:      len(payload),
		Timestamp: n.clock.Now().UnixNano(),
	}

	ep, ok := n.endpoints[address.Normalize(to)]
	switch {
	case !ok:
		record.Reason = "no endpoint"
	default:
		select {
		case ep.inbox <- datagram{from: from, payload: append([]byte(nil), payload...)}:
			record.Success = true
		default:
			record.Reason = "queue full"
		}
	}
	n.deliveryLog = append(n.deliveryLog, record)

	if !record.Success {
		n.logger.WithFields(logrus.Fields{
			"from":      from.String(),
			"to":        to.String(),
			"size":      len(payload),
			"reason":    record.Reason,
			"component": "simnet",
		}).Debug("Dropped datagram")
	}
}

func (n *Network) unbind(ep *endpoint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.endpoints[ep.local] == ep {
		delete(n.endpoints, ep.local)
	}
}

func (n *Network) park(ep *endpoint) netpoll.Descriptor {
	n.mu.Lock()
	defer n.mu.Unlock()

	fd := n.allocateFD()
	n.descriptors[fd] = descriptor{ep: ep}
	return fd
}

// GetDeliveryLog returns a copy of the delivery log for test verification
func (n *Network) GetDeliveryLog() []DeliveryRecord {
	n.mu.Lock()
	defer n.mu.Unlock()

	log := make([]DeliveryRecord, len(n.deliveryLog))
	copy(log, n.deliveryLog)
	return log
}

// ClearDeliveryLog clears the delivery log for test cleanup
func (n *Network) ClearDeliveryLog() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deliveryLog = n.deliveryLog[:0]
}

// GetStats returns statistics about the simulation
func (n *Network) GetStats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	stats := Stats{Endpoints: len(n.endpoints)}
	for _, record := range n.deliveryLog {
		if record.Success {
			stats.Deliveries++
		} else {
			stats.Dropped++
		}
	}
	return stats
}

// errClosed mirrors the error the Go runtime returns for I/O on a closed socket.
var errClosed = net.ErrClosed
