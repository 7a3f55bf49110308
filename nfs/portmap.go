package nfs

import (
	"errors"
	"io"
	"log"
	"net"

	"wwwroot-server/utils"
)

// Minimal rpcbind/portmap v2 (RFC 1833) answering NULL and GETPORT, so
// clients can mount without being told the port.

const (
	programPortmap = 100000
	programNFS     = 100003
	programMount   = 100005

	portmapVersion2 = 2
	nfsVersion3     = 3
	mountVersion3   = 3

	procPmapNull    = 0
	procPmapGetport = 3

	ipprotoTCP = 6
)

// Portmap answers GETPORT for the NFS and MOUNT programs served on one TCP port.
type Portmap struct {
	pc      net.PacketConn
	nfsPort uint32
	logger  *log.Logger
}

// ListenPortmap binds UDP addr (normally ":111") and reports nfsPort for
// NFSv3 and MOUNTv3 over TCP.
func ListenPortmap(addr string, nfsPort int, logger *log.Logger) (*Portmap, error) {
	if addr == "" {
		addr = ":111"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	pc, err := utils.ListenUDP(addr)
	if err != nil {
		return nil, err
	}
	return &Portmap{pc: pc, nfsPort: uint32(nfsPort), logger: logger}, nil
}

// Addr returns the bound UDP address.
func (p *Portmap) Addr() net.Addr {
	return p.pc.LocalAddr()
}

// Serve answers calls until Close is called.
func (p *Portmap) Serve() error {
	p.logger.Printf("portmap listening on %s (nfs/mount tcp port %d)", p.pc.LocalAddr(), p.nfsPort)
	buf := make([]byte, 2048)
	for {
		n, raddr, err := p.pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		resp, call, err := handlePortmap(buf[:n], p.nfsPort)
		if err != nil {
			// malformed or not a call
			continue
		}
		p.logger.Printf("portmap call from %s prog=%d vers=%d proc=%d", raddr, call.prog, call.vers, call.proc)
		_, _ = p.pc.WriteTo(resp, raddr)
	}
}

// Close stops Serve.
func (p *Portmap) Close() error {
	return p.pc.Close()
}

func handlePortmap(req []byte, nfsPort uint32) ([]byte, rpcCall, error) {
	call, r, err := parseRPCCall(req)
	if err != nil {
		return nil, call, err
	}
	if call.prog != programPortmap {
		return acceptedReply(call.xid, acceptProgUnavail).b, call, nil
	}
	if call.vers != portmapVersion2 {
		w := acceptedReply(call.xid, acceptProgMismatch)
		w.writeUint32(portmapVersion2) // low
		w.writeUint32(portmapVersion2) // high
		return w.b, call, nil
	}

	switch call.proc {
	case procPmapNull:
		return acceptedReply(call.xid, acceptSuccess).b, call, nil
	case procPmapGetport:
		// mapping: prog, vers, prot, port (ignored)
		var m [4]uint32
		for i := range m {
			if m[i], err = r.readUint32(); err != nil {
				return acceptedReply(call.xid, acceptGarbageArgs).b, call, nil
			}
		}
		w := acceptedReply(call.xid, acceptSuccess)
		w.writeUint32(lookupPort(m[0], m[1], m[2], nfsPort))
		return w.b, call, nil
	default:
		return acceptedReply(call.xid, acceptProcUnavail).b, call, nil
	}
}

func lookupPort(prog, vers, prot, nfsPort uint32) uint32 {
	if prot != ipprotoTCP {
		return 0
	}
	switch {
	case prog == programNFS && vers == nfsVersion3:
		return nfsPort
	case prog == programMount && vers == mountVersion3:
		return nfsPort
	}
	return 0
}
