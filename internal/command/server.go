package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

const maxLine = 64 * 1024

var ErrServerClosed = errors.New("command: server closed")

// Server accepts newline-delimited JSON commands over TCP. Commands only
// write thruster setpoints; state queries read the latest snapshot published
// by the simulation goroutine.
type Server struct {
	board *setpoint.Board
	log   zerolog.Logger

	state   atomic.Pointer[Snapshot]
	running atomic.Bool

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(board *setpoint.Board, log zerolog.Logger) *Server {
	return &Server{
		board: board,
		log:   log.With().Str("component", "command").Logger(),
		conns: make(map[net.Conn]struct{}),
	}
}

// Publish replaces the snapshot returned to state queries.
func (s *Server) Publish(sn *Snapshot) { s.state.Store(sn) }

func (s *Server) Latest() *Snapshot { return s.state.Load() }

// OnStep publishes every simulated sample.
func (s *Server) OnStep(x sim.Sample) { s.Publish(SnapshotOf(x)) }

func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)
	s.log.Info().Str("addr", ln.Addr().String()).Msg("command server listening")
	return nil
}

func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until Close is called or ctx is done. It returns
// nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("command: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		if !s.track(conn) {
			conn.Close()
			return nil
		}
		go s.serveConn(conn)
	}
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Close stops accepting, drops live connections and waits for their
// goroutines to exit.
func (s *Server) Close() error {
	if !s.running.Swap(false) {
		s.wg.Wait()
		return nil
	}

	s.mu.Lock()
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("command server stopped")
	return err
}

func (s *Server) serveConn(c net.Conn) {
	defer s.wg.Done()
	defer s.untrack(c)
	defer c.Close()

	log := s.log.With().Str("remote", c.RemoteAddr().String()).Logger()
	log.Debug().Msg("client connected")

	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	enc := json.NewEncoder(c)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(line, &req); err != nil {
			resp = Response{Error: fmt.Sprintf("malformed request: %v", err)}
		} else {
			resp = s.Handle(req)
		}

		if err := enc.Encode(resp); err != nil {
			if s.running.Load() {
				log.Debug().Err(err).Msg("write failed")
			}
			return
		}
	}
	if err := sc.Err(); err != nil && s.running.Load() {
		log.Debug().Err(err).Msg("read failed")
	}
	log.Debug().Msg("client disconnected")
}

// Handle applies one request. Bad thruster names or values are reported as
// warnings and never fail the request.
func (s *Server) Handle(req Request) Response {
	if req.Query != "" {
		if req.Query != "state" {
			return Response{Error: fmt.Sprintf("unknown query: %s", req.Query)}
		}
		sn := s.Latest()
		if sn == nil {
			return Response{Error: "no state published yet"}
		}
		return Response{OK: true, State: sn}
	}

	if req.Thrusters == nil && req.Power == nil {
		return Response{Error: "empty request"}
	}

	resp := Response{OK: true}
	if len(req.Power) > setpoint.Count {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%d extra power values ignored", len(req.Power)-setpoint.Count))
	}
	resp.Applied += s.board.SetAll(req.Power)
	if n := min(len(req.Power), setpoint.Count); resp.Applied < n {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%d power values rejected", n-resp.Applied))
	}

	for name, v := range req.Thrusters {
		if s.board.SetNamed(name, v) {
			resp.Applied++
			continue
		}
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("thruster %q rejected", name))
	}
	return resp
}
