package port

import "ballphys/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Call: one step for a lane
type Call struct {
	Ref  uint64
	Step protocol.Step
}

// Leave: ends a lane after everything queued before it
type Leave struct {
	Ref uint64
}

// drain ends a lane silently once what was queued before it is answered.
type drain struct{}
