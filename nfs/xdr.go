package nfs

import (
	"encoding/binary"
	"errors"
	"io"
)

// ONC RPC (RFC 5531) constants used by the portmapper.
const (
	rpcVersion2 = 2

	msgCall  = 0
	msgReply = 1

	replyAccepted = 0

	authNone = 0

	acceptSuccess      = 0
	acceptProgUnavail  = 1
	acceptProgMismatch = 2
	acceptProcUnavail  = 3
	acceptGarbageArgs  = 4
)

var (
	errShortRPC   = errors.New("short rpc message")
	errNotCall    = errors.New("rpc message is not a call")
	errRPCVersion = errors.New("unsupported rpc version")
)

type xdrReader struct {
	b []byte
	o int
}

func (r *xdrReader) readUint32() (uint32, error) {
	if len(r.b) < r.o+4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.b[r.o : r.o+4])
	r.o += 4
	return v, nil
}

// skipOpaqueAuth skips an opaque_auth: flavor, length, padded body.
func (r *xdrReader) skipOpaqueAuth() error {
	if _, err := r.readUint32(); err != nil {
		return err
	}
	ln, err := r.readUint32()
	if err != nil {
		return err
	}
	pad := (4 - int(ln)&3) & 3
	n := int(ln) + pad
	if n < 0 || len(r.b)-r.o < n {
		return io.ErrUnexpectedEOF
	}
	r.o += n
	return nil
}

type xdrWriter struct {
	b []byte
}

func (w *xdrWriter) writeUint32(v uint32) {
	w.b = binary.BigEndian.AppendUint32(w.b, v)
}

type rpcCall struct {
	xid, prog, vers, proc uint32
}

// parseRPCCall reads a call header and leaves r positioned at the
// procedure arguments.
func parseRPCCall(b []byte) (rpcCall, *xdrReader, error) {
	r := &xdrReader{b: b}
	var c rpcCall
	var mtype, rpcvers uint32
	for _, p := range []*uint32{&c.xid, &mtype, &rpcvers, &c.prog, &c.vers, &c.proc} {
		v, err := r.readUint32()
		if err != nil {
			return rpcCall{}, nil, errShortRPC
		}
		*p = v
	}
	if mtype != msgCall {
		return rpcCall{}, nil, errNotCall
	}
	if rpcvers != rpcVersion2 {
		return rpcCall{}, nil, errRPCVersion
	}
	// cred, then verf
	if err := r.skipOpaqueAuth(); err != nil {
		return rpcCall{}, nil, errShortRPC
	}
	if err := r.skipOpaqueAuth(); err != nil {
		return rpcCall{}, nil, errShortRPC
	}
	return c, r, nil
}

// acceptedReply starts an accepted reply with an AUTH_NONE verifier.
func acceptedReply(xid, stat uint32) *xdrWriter {
	w := &xdrWriter{}
	w.writeUint32(xid)
	w.writeUint32(msgReply)
	w.writeUint32(replyAccepted)
	w.writeUint32(authNone)
	w.writeUint32(0)
	w.writeUint32(stat)
	return w
}
