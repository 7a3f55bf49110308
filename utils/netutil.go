package utils

import (
	"errors"
	"fmt"
	"net"
)

// ErrAddrInUse is matched by listen errors caused by another socket
// already holding the address.
var ErrAddrInUse = errors.New("address already in use")

type addrInUseError struct {
	addr string
	err  error
}

func (e *addrInUseError) Error() string {
	return fmt.Sprintf("listen %s: %v", e.addr, e.err)
}

func (e *addrInUseError) Unwrap() []error {
	return []error{ErrAddrInUse, e.err}
}

func wrapListenErr(addr string, err error) error {
	if isAddrInUse(err) {
		return &addrInUseError{addr: addr, err: err}
	}
	return err
}

// ListenTCP listens on addr like net.Listen("tcp", addr).
func ListenTCP(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, wrapListenErr(addr, err)
	}
	return ln, nil
}

// ListenUDP listens on addr like net.ListenPacket("udp", addr).
func ListenUDP(addr string) (net.PacketConn, error) {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, wrapListenErr(addr, err)
	}
	return pc, nil
}
