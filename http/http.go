// Package httpx serves a document root over HTTP, one connection at a time.
package httpx

import (
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/net/netutil"

	"wwwroot-server/utils"
)

// DefaultAddr binds every interface on port 8000.
const DefaultAddr = ":8000"

// Server is a static file server bound to a TCP listener.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
}

// Listen binds addr and prepares a server for root. Nothing is served
// until Serve is called.
//
// The listener admits a single connection and keep-alives are off, so a
// request is not accepted until the previous response has been sent and
// its connection closed.
func Listen(addr string, root billy.Filesystem, logger *log.Logger) (*Server, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := utils.ListenTCP(addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: NewHandler(root, logger)}
	srv.SetKeepAlivesEnabled(false)
	return &Server{
		srv:    srv,
		ln:     netutil.LimitListener(ln, 1),
		logger: logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until Close is called, then returns nil.
func (s *Server) Serve() error {
	if s.logger != nil {
		s.logger.Printf("http server listening on %s", s.ln.Addr())
	}
	err := s.srv.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil && s.logger != nil {
		s.logger.Printf("http serve error: %v", err)
	}
	return err
}

// Close stops the listener and drops open connections without draining them.
// The listener is closed even if Serve was never called.
func (s *Server) Close() error {
	err := s.srv.Close()
	if lnErr := s.ln.Close(); lnErr != nil && !errors.Is(lnErr, net.ErrClosed) && err == nil {
		err = lnErr
	}
	return err
}
