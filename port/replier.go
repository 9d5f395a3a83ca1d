package port

import (
	"log"

	"ballphys/protocol"
)

// Replier encodes replies with one codec and sends them on one Conn. It is
// safe for concurrent use when the Conn is.
type Replier struct {
	Codec protocol.Codec
	Conn  Conn
}

func (r *Replier) Reply(t string, ref uint64, payload any) {
	b, err := protocol.Encode(r.Codec, t, ref, payload)
	if err != nil {
		log.Printf("encode %s (ref %d): %v", t, ref, err)
		return
	}
	if err := r.Conn.Send(b); err != nil {
		log.Printf("send %s (ref %d): %v", t, ref, err)
	}
}

func (r *Replier) Fail(ref uint64, err error) {
	r.Reply(protocol.MsgError, ref, protocol.Error{Message: err.Error()})
}
