package port

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"ballphys/game"
	"ballphys/protocol"
)

// Server answers framed requests from a host process. Steps with a session
// go to that session's lane; steps without one run on their own goroutine.
type Server struct {
	codec    protocol.Codec
	stepper  *game.Stepper
	out      *Replier
	lanes    *Manager
	maxFrame int
	inflight sync.WaitGroup
}

func NewServer(codec protocol.Codec, s *game.Stepper, conn Conn, maxFrame int) *Server {
	out := &Replier{Codec: codec, Conn: conn}
	return &Server{
		codec:    codec,
		stepper:  s,
		out:      out,
		lanes:    NewManager(s, out),
		maxFrame: maxFrame,
	}
}

func (s *Server) Lanes() *Manager { return s.lanes }

// Serve reads frames from r until it ends or ctx is done. On a clean end of
// input every queued step is answered before Serve returns nil. Framing
// errors end the loop and are returned. Nothing is sent on the Conn after
// Serve returns.
func (s *Server) Serve(ctx context.Context, r io.Reader) error {
	frames := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		for {
			f, err := ReadFrame(r, s.maxFrame)
			if err != nil {
				errc <- err
				return
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.lanes.StopAll()
			s.inflight.Wait()
			return ctx.Err()
		case err := <-errc:
			s.lanes.Drain()
			s.inflight.Wait()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		case f := <-frames:
			s.handleFrame(f)
		}
	}
}

func (s *Server) handleFrame(b []byte) {
	env, err := protocol.DecodeEnvelope(s.codec, b)
	if err != nil {
		log.Printf("decode envelope: %v", err)
		s.out.Fail(0, err)
		return
	}

	switch env.T {
	case protocol.MsgStep:
		req, err := protocol.DecodePayload[protocol.Step](s.codec, env)
		if err != nil {
			s.out.Fail(env.Ref, err)
			return
		}
		if req.Session == "" {
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				s.handleCommand(Call{Ref: env.Ref, Step: req})
			}()
			return
		}
		lane, err := s.lanes.GetOrCreateLane(req.Session)
		if err != nil {
			s.out.Fail(env.Ref, err)
			return
		}
		lane.Inbox <- Call{Ref: env.Ref, Step: req}
	case protocol.MsgOpen:
		code := s.lanes.CreateLane()
		s.out.Reply(protocol.MsgOpened, env.Ref, protocol.Opened{Session: code})
	case protocol.MsgClose:
		req, err := protocol.DecodePayload[protocol.Close](s.codec, env)
		if err != nil {
			s.out.Fail(env.Ref, err)
			return
		}
		if !s.lanes.CloseLane(req.Session, env.Ref) {
			s.out.Fail(env.Ref, fmt.Errorf("unknown session %q", req.Session))
		}
	case protocol.MsgList:
		s.out.Reply(protocol.MsgSessions, env.Ref, protocol.Sessions{Sessions: s.lanes.ListLanes()})
	case protocol.MsgPing:
		s.out.Reply(protocol.MsgPong, env.Ref, protocol.Empty{})
	default:
		log.Printf("unknown message type %q (ref %d)", env.T, env.Ref)
		s.out.Fail(env.Ref, fmt.Errorf("unknown message type %q", env.T))
	}
}

func (s *Server) handleCommand(c Call) {
	res, err := RunStep(s.stepper, c.Step)
	if err != nil {
		s.out.Fail(c.Ref, err)
		return
	}
	s.out.Reply(protocol.MsgResult, c.Ref, res)
}
