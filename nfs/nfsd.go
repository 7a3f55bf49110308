// Package nfs mirrors the document root over NFSv3, read-only.
package nfs

import (
	"errors"
	"io"
	"log"
	"net"

	"github.com/go-git/go-billy/v5"
	gonfs "github.com/willscott/go-nfs"
	"github.com/willscott/go-nfs/helpers"

	"wwwroot-server/utils"
)

// handleCacheSize bounds the number of file handles kept by the caching handler.
const handleCacheSize = 1024

// Server exports a billy.Filesystem over NFSv3 and MOUNT on one TCP port.
type Server struct {
	ln      net.Listener
	handler gonfs.Handler
	logger  *log.Logger
}

func newHandler(root billy.Filesystem) gonfs.Handler {
	return helpers.NewCachingHandler(helpers.NewNullAuthHandler(root), handleCacheSize)
}

// Listen binds TCP addr (normally ":2049") for an export of root.
// Any export path mounts the whole root.
func Listen(addr string, root billy.Filesystem, logger *log.Logger) (*Server, error) {
	if addr == "" {
		addr = ":2049"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ln, err := utils.ListenTCP(addr)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, handler: newHandler(root), logger: logger}, nil
}

// Addr returns the bound TCP address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts NFS clients until Close is called.
func (s *Server) Serve() error {
	s.logger.Printf("nfsd v3 listening on %s", s.ln.Addr())
	err := gonfs.Serve(s.ln, s.handler)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	if err != nil {
		s.logger.Printf("nfsd serve error: %v", err)
	}
	return err
}

// Close stops accepting clients.
func (s *Server) Close() error {
	return s.ln.Close()
}
