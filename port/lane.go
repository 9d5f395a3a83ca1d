package port

import (
	"sync"
	"sync/atomic"

	"ballphys/game"
	"ballphys/protocol"
)

// Lane runs the steps of one host session in arrival order. Lanes share no
// physics state; they only keep a session's replies ordered.
type Lane struct {
	Inbox   chan any
	stepper *game.Stepper
	out     *Replier
	steps   atomic.Int64
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once

	Code string // session code (e.g. "ABC234")
}

func NewLane(code string, s *game.Stepper, out *Replier) *Lane {
	return &Lane{
		Inbox:   make(chan any, 256),
		stepper: s,
		out:     out,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		Code:    code,
	}
}

// Stop ends the lane without answering what is still queued.
func (l *Lane) Stop() {
	l.stop.Do(func() { close(l.quit) })
}

// Done is closed once Run has returned.
func (l *Lane) Done() <-chan struct{} {
	return l.done
}

// Steps returns how many steps the lane has answered.
func (l *Lane) Steps() int {
	return int(l.steps.Load())
}

func (l *Lane) Run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case cmd := <-l.Inbox:
			if !l.handleCommand(cmd) {
				return
			}
		}
	}
}

func (l *Lane) handleCommand(cmd any) bool {
	switch c := cmd.(type) {
	case Call:
		res, err := RunStep(l.stepper, c.Step)
		if err != nil {
			l.out.Fail(c.Ref, err)
			return true
		}
		l.steps.Add(1)
		l.out.Reply(protocol.MsgResult, c.Ref, res)
	case Leave:
		l.out.Reply(protocol.MsgClosed, c.Ref, protocol.Closed{Session: l.Code})
		return false
	case drain:
		return false
	}
	return true
}
