package protocol

const (
	MsgStep     = "step"
	MsgOpen     = "open"
	MsgClose    = "close"
	MsgList     = "list"
	MsgPing     = "ping"
	MsgResult   = "result"
	MsgOpened   = "opened"
	MsgClosed   = "closed"
	MsgSessions = "sessions"
	MsgPong     = "pong"
	MsgError    = "error"
)

const (
	HeaderSize      = 4 // big-endian length prefix, as an Erlang {packet, 4} port
	DefaultMaxFrame = 1 << 20
)

// Envelope is one frame body. P holds the payload encoded with the same codec
// as the envelope itself; Ref is echoed back on the reply.
type Envelope struct {
	T   string
	Ref uint64
	P   []byte
}
