package protocol

import "testing"

func TestMessageConstants(t *testing.T) {
	cases := []struct{ got, want string }{
		{MsgStep, "step"},
		{MsgOpen, "open"},
		{MsgClose, "close"},
		{MsgList, "list"},
		{MsgPing, "ping"},
		{MsgResult, "result"},
		{MsgOpened, "opened"},
		{MsgClosed, "closed"},
		{MsgSessions, "sessions"},
		{MsgPong, "pong"},
		{MsgError, "error"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("message constant = %q, want %q", c.got, c.want)
		}
	}
}

func TestFramingConstants(t *testing.T) {
	if HeaderSize != 4 {
		t.Fatalf("HeaderSize = %d, want %d", HeaderSize, 4)
	}
	if DefaultMaxFrame <= 0 || DefaultMaxFrame > 1<<31-1 {
		t.Fatalf("DefaultMaxFrame %d does not fit a 4-byte header", DefaultMaxFrame)
	}
}
