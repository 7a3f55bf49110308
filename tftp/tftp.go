// Package tftp mirrors the document root over TFTP, read-only.
package tftp

import (
	"errors"
	"io"
	"log"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	tftp "github.com/pin/tftp/v3"

	"wwwroot-server/utils"
)

var errReadOnly = errors.New("tftp: writes are not accepted")

// Server serves files from a billy.Filesystem to TFTP clients.
type Server struct {
	srv    *tftp.Server
	conn   net.PacketConn
	logger *log.Logger

	mu      sync.Mutex
	serving bool
	closed  bool
}

func cleanName(filename string) string {
	return path.Clean("/" + strings.TrimSpace(filename))
}

func serveFile(root billy.Filesystem, name string, rf io.ReaderFrom) error {
	fi, err := root.Stat(name)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return errors.New("is a directory: " + name)
	}
	f, err := root.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if ot, ok := rf.(tftp.OutgoingTransfer); ok {
		ot.SetSize(fi.Size())
	}
	_, err = rf.ReadFrom(f)
	return err
}

// Listen binds UDP addr for a TFTP server exposing root.
func Listen(addr string, root billy.Filesystem, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	readHandler := func(filename string, rf io.ReaderFrom) error {
		name := cleanName(filename)
		from := "?"
		if ot, ok := rf.(tftp.OutgoingTransfer); ok {
			addr := ot.RemoteAddr()
			from = addr.String()
		}
		if err := serveFile(root, name, rf); err != nil {
			logger.Printf("RRQ %q from %s failed: %v", name, from, err)
			return err
		}
		logger.Printf("RRQ %q from %s", name, from)
		return nil
	}
	writeHandler := func(filename string, wt io.WriterTo) error {
		logger.Printf("WRQ %q refused", filename)
		return errReadOnly
	}

	conn, err := utils.ListenUDP(addr)
	if err != nil {
		return nil, err
	}
	srv := tftp.NewServer(readHandler, writeHandler)
	srv.SetTimeout(5 * time.Second)
	return &Server{srv: srv, conn: conn, logger: logger}, nil
}

// Addr returns the bound UDP address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve handles requests until Close is called.
func (s *Server) Serve() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.serving = true
	s.mu.Unlock()

	s.logger.Printf("TFTP server listening on %s", s.conn.LocalAddr())
	err := s.srv.Serve(s.conn)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Close stops the server. Transfers in flight are abandoned.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.serving {
		s.srv.Shutdown()
	}
	// Shutdown only closes the socket once the library's Serve has taken it.
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
