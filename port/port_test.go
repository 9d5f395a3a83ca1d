package port

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ballphys/game"
	"ballphys/physics"
	"ballphys/protocol"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

func newStepper() *game.Stepper {
	return game.NewStepper(physics.NewBox2D(), game.DefaultTuning())
}

func validStep(session string) protocol.Step {
	return protocol.Step{
		Session: session,
		Ball:    protocol.Ball{ShootDir: protocol.Vec{1, 0}, Scale: 1},
		Court:   &protocol.Court{Width: 20, Height: 10, GoalWidth: 4, GoalDepth: 2},
		Players: []protocol.Player{
			{ID: 5, Position: protocol.Vec{-5, 0}, Movement: protocol.Vec{1, 0}, Scale: 1},
			{ID: 2, Position: protocol.Vec{5, 0}, Movement: protocol.Vec{0, -1}, Scale: 1},
		},
	}
}

func recv(t *testing.T, c protocol.Codec, fc *fakeConn) protocol.Envelope {
	t.Helper()
	select {
	case b := <-fc.sendCh:
		env, err := protocol.DecodeEnvelope(c, b)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reply")
	}
	return protocol.Envelope{}
}

func TestLaneAnswersStepsInOrder(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	l := NewLane("ABC234", newStepper(), &Replier{Codec: protocol.JSON, Conn: fc})
	go l.Run()
	defer l.Stop()

	for ref := uint64(1); ref <= 3; ref++ {
		l.Inbox <- Call{Ref: ref, Step: validStep("ABC234")}
	}
	for ref := uint64(1); ref <= 3; ref++ {
		env := recv(t, protocol.JSON, fc)
		if env.T != protocol.MsgResult || env.Ref != ref {
			t.Fatalf("reply got t=%q ref=%d, want result ref=%d", env.T, env.Ref, ref)
		}
		res, err := protocol.DecodePayload[protocol.Result](protocol.JSON, env)
		if err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if len(res.Players) != 2 || res.Players[0].ID != 5 || res.Players[1].ID != 2 {
			t.Fatalf("player order lost: %+v", res.Players)
		}
		if res.Ball.ShootDir != (protocol.Vec{}) || res.Ball.Position[0] <= 0 {
			t.Fatalf("unexpected ball: %+v", res.Ball)
		}
	}
	if l.Steps() != 3 {
		t.Fatalf("Steps() = %d, want 3", l.Steps())
	}
}

func TestLaneReportsInvalidInput(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	l := NewLane("ABC234", newStepper(), &Replier{Codec: protocol.JSON, Conn: fc})
	go l.Run()
	defer l.Stop()

	bad := validStep("ABC234")
	bad.Ball.Scale = 0
	l.Inbox <- Call{Ref: 9, Step: bad}

	env := recv(t, protocol.JSON, fc)
	if env.T != protocol.MsgError || env.Ref != 9 {
		t.Fatalf("reply got t=%q ref=%d, want error ref=9", env.T, env.Ref)
	}
	e, err := protocol.DecodePayload[protocol.Error](protocol.JSON, env)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(e.Message, "invalid radius") {
		t.Fatalf("error message %q does not name the radius", e.Message)
	}
	if l.Steps() != 0 {
		t.Fatalf("failed step counted")
	}
}

func TestLaneLeaveAnswersQueuedStepsFirst(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	l := NewLane("ABC234", newStepper(), &Replier{Codec: protocol.JSON, Conn: fc})
	go l.Run()

	l.Inbox <- Call{Ref: 1, Step: validStep("ABC234")}
	l.Inbox <- Leave{Ref: 2}

	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgResult || env.Ref != 1 {
		t.Fatalf("first reply got t=%q ref=%d", env.T, env.Ref)
	}
	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgClosed || env.Ref != 2 {
		t.Fatalf("second reply got t=%q ref=%d", env.T, env.Ref)
	}
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("lane did not exit after Leave")
	}
}

func TestManagerCreateListClose(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	m := NewManager(newStepper(), &Replier{Codec: protocol.JSON, Conn: fc})
	defer m.StopAll()

	code := m.CreateLane()
	if len(code) != 6 {
		t.Fatalf("code %q is not 6 chars", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeChars, r) {
			t.Fatalf("code %q has char %q outside the alphabet", code, r)
		}
	}
	a, errA := m.GetOrCreateLane(code)
	b, errB := m.GetOrCreateLane(code)
	if errA != nil || errB != nil || a != b {
		t.Fatalf("same code returned different lanes (%v, %v)", errA, errB)
	}
	if l, err := m.GetOrCreateLane(""); l != nil || err == nil {
		t.Fatalf("empty code should not create a lane")
	}
	if _, err := m.GetOrCreateLane("ZZZZZZ"); err != nil {
		t.Fatalf("GetOrCreateLane: %v", err)
	}

	list := m.ListLanes()
	if len(list) != 2 || list[0].Session > list[1].Session {
		t.Fatalf("unexpected lane list: %+v", list)
	}

	if !m.CloseLane(code, 4) {
		t.Fatalf("CloseLane(%q) = false", code)
	}
	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgClosed || env.Ref != 4 {
		t.Fatalf("close reply got t=%q ref=%d", env.T, env.Ref)
	}
	if m.CloseLane(code, 5) {
		t.Fatalf("closing twice should fail")
	}
	if list := m.ListLanes(); len(list) != 1 || list[0].Session != "ZZZZZZ" {
		t.Fatalf("unexpected lane list after close: %+v", list)
	}
}

// heldConn accepts nothing until the test reads from sendCh, so a lane stays
// busy for as long as the test wants.
func newHeldConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte)}
}

func TestManagerRefusesStepsWhileClosing(t *testing.T) {
	fc := newHeldConn()
	m := NewManager(newStepper(), &Replier{Codec: protocol.JSON, Conn: fc})
	defer m.StopAll()

	code := m.CreateLane()
	l, err := m.GetOrCreateLane(code)
	if err != nil {
		t.Fatalf("GetOrCreateLane: %v", err)
	}
	l.Inbox <- Call{Ref: 1, Step: validStep(code)}
	if !m.CloseLane(code, 2) {
		t.Fatalf("CloseLane(%q) = false", code)
	}

	// The lane cannot finish: nobody has taken its replies yet.
	if _, err := m.GetOrCreateLane(code); !errors.Is(err, ErrSessionClosing) {
		t.Fatalf("step on a closing session: got %v, want ErrSessionClosing", err)
	}
	if m.CloseLane(code, 3) {
		t.Fatalf("closing a closing session should fail")
	}
	if list := m.ListLanes(); len(list) != 0 {
		t.Fatalf("closing lane still listed: %+v", list)
	}

	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgResult || env.Ref != 1 {
		t.Fatalf("first reply got t=%q ref=%d", env.T, env.Ref)
	}
	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgClosed || env.Ref != 2 {
		t.Fatalf("second reply got t=%q ref=%d", env.T, env.Ref)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		fresh, err := m.GetOrCreateLane(code)
		if err == nil {
			if fresh == l {
				t.Fatalf("closed lane handed out again")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("code %q never freed: %v", code, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerWaitsForStepsOnCancel(t *testing.T) {
	fc := newHeldConn()
	srv := NewServer(protocol.JSON, newStepper(), fc, protocol.DefaultMaxFrame)

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, pr) }()

	b, err := protocol.Encode(protocol.JSON, protocol.MsgStep, 1, validStep(""))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := WriteFrame(pw, b); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	// Give the step time to reach Send, where it blocks.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		t.Fatalf("Serve returned (%v) while a step was still sending", err)
	case <-time.After(50 * time.Millisecond):
	}

	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgResult || env.Ref != 1 {
		t.Fatalf("reply got t=%q ref=%d", env.T, env.Ref)
	}
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return after the step was answered")
	}
}

func TestServerRefusesStepOnClosingSession(t *testing.T) {
	fc := newHeldConn()
	srv := NewServer(protocol.JSON, newStepper(), fc, protocol.DefaultMaxFrame)

	in := frames(t, protocol.JSON,
		protocol.MsgStep, uint64(1), validStep("LANE01"),
		protocol.MsgClose, uint64(2), protocol.Close{Session: "LANE01"},
		protocol.MsgStep, uint64(3), validStep("LANE01"),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), in) }()

	// The lane is stuck on its first reply until we read, so the third frame
	// is handled while the session is still closing.
	time.Sleep(50 * time.Millisecond)
	got := map[uint64]string{}
	for i := 0; i < 3; i++ {
		env := recv(t, protocol.JSON, fc)
		got[env.Ref] = env.T
	}
	want := map[uint64]string{1: protocol.MsgResult, 2: protocol.MsgClosed, 3: protocol.MsgError}
	for ref, typ := range want {
		if got[ref] != typ {
			t.Fatalf("ref %d got %q, want %q", ref, got[ref], typ)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func frames(t *testing.T, c protocol.Codec, msgs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for i := 0; i+2 < len(msgs); i += 3 {
		b, err := protocol.Encode(c, msgs[i].(string), msgs[i+1].(uint64), msgs[i+2])
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := WriteFrame(&buf, b); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	return &buf
}

func TestServerHandlesSession(t *testing.T) {
	for _, c := range []protocol.Codec{protocol.JSON, protocol.MsgPack} {
		fc := &fakeConn{sendCh: make(chan []byte, 64)}
		srv := NewServer(c, newStepper(), fc, protocol.DefaultMaxFrame)

		in := frames(t, c,
			protocol.MsgPing, uint64(1), protocol.Empty{},
			protocol.MsgStep, uint64(2), validStep(""),
			protocol.MsgStep, uint64(3), validStep("LANE01"),
			protocol.MsgStep, uint64(4), validStep("LANE01"),
			protocol.MsgList, uint64(5), protocol.Empty{},
			protocol.MsgClose, uint64(6), protocol.Close{Session: "NOPE"},
			"bogus", uint64(7), protocol.Empty{},
		)
		if err := srv.Serve(context.Background(), in); err != nil {
			t.Fatalf("%s: Serve: %v", c.Name(), err)
		}

		got := map[uint64]protocol.Envelope{}
		var laneOrder []uint64
		for len(fc.sendCh) > 0 {
			env := recv(t, c, fc)
			got[env.Ref] = env
			if env.Ref == 3 || env.Ref == 4 {
				laneOrder = append(laneOrder, env.Ref)
			}
		}
		want := map[uint64]string{
			1: protocol.MsgPong,
			2: protocol.MsgResult,
			3: protocol.MsgResult,
			4: protocol.MsgResult,
			5: protocol.MsgSessions,
			6: protocol.MsgError,
			7: protocol.MsgError,
		}
		for ref, typ := range want {
			if got[ref].T != typ {
				t.Fatalf("%s: ref %d got %q, want %q", c.Name(), ref, got[ref].T, typ)
			}
		}
		if len(laneOrder) != 2 || laneOrder[0] != 3 {
			t.Fatalf("%s: lane replies out of order: %v", c.Name(), laneOrder)
		}
		sessions, err := protocol.DecodePayload[protocol.Sessions](c, got[5])
		if err != nil {
			t.Fatalf("%s: decode sessions: %v", c.Name(), err)
		}
		if len(sessions.Sessions) != 1 || sessions.Sessions[0].Session != "LANE01" {
			t.Fatalf("%s: unexpected sessions: %+v", c.Name(), sessions)
		}
	}
}

func TestServerOpenThenClose(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	srv := NewServer(protocol.JSON, newStepper(), fc, protocol.DefaultMaxFrame)

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), pr) }()

	write := func(typ string, ref uint64, payload any) {
		b, err := protocol.Encode(protocol.JSON, typ, ref, payload)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := WriteFrame(pw, b); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	write(protocol.MsgOpen, 1, protocol.Empty{})
	env := recv(t, protocol.JSON, fc)
	opened, err := protocol.DecodePayload[protocol.Opened](protocol.JSON, env)
	if err != nil || env.T != protocol.MsgOpened {
		t.Fatalf("open reply got t=%q err=%v", env.T, err)
	}

	write(protocol.MsgStep, 2, validStep(opened.Session))
	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgResult || env.Ref != 2 {
		t.Fatalf("step reply got t=%q ref=%d", env.T, env.Ref)
	}

	write(protocol.MsgClose, 3, protocol.Close{Session: opened.Session})
	if env := recv(t, protocol.JSON, fc); env.T != protocol.MsgClosed || env.Ref != 3 {
		t.Fatalf("close reply got t=%q ref=%d", env.T, env.Ref)
	}

	pw.Close()
	if err := <-done; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestServerRejectsOversizeFrame(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	srv := NewServer(protocol.JSON, newStepper(), fc, 16)

	in := frames(t, protocol.JSON, protocol.MsgStep, uint64(1), validStep(""))
	err := srv.Serve(context.Background(), in)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestServerStopsOnContext(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	srv := NewServer(protocol.JSON, newStepper(), fc, protocol.DefaultMaxFrame)

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, pr) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("hello")); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	short := bytes.NewReader(buf.Bytes()[:buf.Len()-2])
	if _, err := ReadFrame(short, 0); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader(nil), 0); err != io.EOF {
		t.Fatalf("expected io.EOF on empty input, got %v", err)
	}

	got, err := ReadFrame(bytes.NewReader(buf.Bytes()), 0)
	if err != nil || string(got) != "hello" {
		t.Fatalf("ReadFrame got %q, %v", got, err)
	}
}
