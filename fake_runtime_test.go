package udpsock

import (
	"errors"
	"net/netip"
	"time"

	"github.com/opd-ai/udpsock/netpoll"
)

// recvResult scripts one RecvFrom call: fill copies into the buffer and n is
// the count reported back.
type recvResult struct {
	fill []byte
	n    int
	from netip.AddrPort
	err  error
}

type sendResult struct {
	n   int
	err error
}

// fakeHandle records every call so tests can assert which primitives ran.
type fakeHandle struct {
	local netip.AddrPort

	recv     []recvResult
	send     []sendResult
	detachFD netpoll.Descriptor
	detachEr error
	closeErr error

	calls     []string
	closes    int
	detaches  int
	deadlines []time.Time
	bufLens   []int
	sent      [][]byte
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		local:    netip.MustParseAddrPort("127.0.0.1:4000"),
		detachFD: 42,
	}
}

func (h *fakeHandle) LocalAddr() netip.AddrPort {
	return h.local
}

func (h *fakeHandle) SendTo(b []byte, addr netip.AddrPort, deadline time.Time) (int, error) {
	h.calls = append(h.calls, "send")
	h.deadlines = append(h.deadlines, deadline)
	h.sent = append(h.sent, append([]byte(nil), b...))
	if len(h.send) == 0 {
		return len(b), nil
	}
	r := h.send[0]
	h.send = h.send[1:]
	return r.n, r.err
}

func (h *fakeHandle) RecvFrom(b []byte, deadline time.Time) (int, netip.AddrPort, error) {
	h.calls = append(h.calls, "recv")
	h.deadlines = append(h.deadlines, deadline)
	h.bufLens = append(h.bufLens, len(b))
	if len(h.recv) == 0 {
		return 0, netip.AddrPort{}, errors.New("no scripted datagram")
	}
	r := h.recv[0]
	h.recv = h.recv[1:]
	copy(b, r.fill)
	return r.n, r.from, r.err
}

func (h *fakeHandle) Detach() (netpoll.Descriptor, error) {
	h.calls = append(h.calls, "detach")
	h.detaches++
	if h.detachEr != nil {
		return -1, h.detachEr
	}
	return h.detachFD, nil
}

func (h *fakeHandle) Close() error {
	h.calls = append(h.calls, "close")
	h.closes++
	return h.closeErr
}

// fakeRuntime hands out scripted handles.
type fakeRuntime struct {
	handles   []*fakeHandle
	listenErr error
	attachErr error
	attached  []netpoll.Descriptor
}

func (r *fakeRuntime) next() *fakeHandle {
	if len(r.handles) == 0 {
		return newFakeHandle()
	}
	h := r.handles[0]
	r.handles = r.handles[1:]
	return h
}

func (r *fakeRuntime) Listen(addr netip.AddrPort) (Handle, error) {
	if r.listenErr != nil {
		return nil, r.listenErr
	}
	h := r.next()
	h.local = addr
	return h, nil
}

func (r *fakeRuntime) Attach(fd netpoll.Descriptor) (Handle, error) {
	if r.attachErr != nil {
		return nil, r.attachErr
	}
	r.attached = append(r.attached, fd)
	return r.next(), nil
}
