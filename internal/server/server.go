package server

import (
	"net"
	"sync"

	"vsengine"
	"vsengine/internal/wire"
)

// Server listens on a single TCP address and dispatches every
// connection's command frames into one shared catalog. dispatchMu
// serializes dispatch across connections with a single, coarse,
// process-wide mutex guarding catalog access across goroutines.
type Server struct {
	catalog    *vsengine.Catalog[string]
	log        *vsengine.Logger
	dispatchMu sync.Mutex

	listener net.Listener
	done     chan struct{}
}

// New constructs a Server backed by catalog, not yet listening.
func New(catalog *vsengine.Catalog[string], log *vsengine.Logger) *Server {
	return &Server{catalog: catalog, log: log, done: make(chan struct{})}
}

// ListenAndServe binds addr and serves connections until Shutdown is
// called or a client sends "exit": that command terminates the server,
// and the caller's process bootstrap handles the rest.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				return err
			}
		}
		go s.handleConn(conn)
	}
}

// Shutdown stops accepting new connections. In-flight connections are
// not forcibly closed: only a socket error or an explicit "exit" ends
// a connection, so this is a graceful drain, not a cancellation.
func (s *Server) Shutdown() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
}

// handleConn services one connection's requests strictly in order;
// requests across different connections interleave only at the
// dispatchMu boundary.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		argv, err := wire.ReadRequest(conn)
		if err != nil {
			return
		}

		s.dispatchMu.Lock()
		code, payload, exit := s.dispatch(argv)
		s.dispatchMu.Unlock()

		if err := wire.WriteResponse(conn, code, payload); err != nil {
			return
		}
		if exit {
			s.Shutdown()
			return
		}
	}
}
