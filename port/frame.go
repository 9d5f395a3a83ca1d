package port

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"ballphys/protocol"
)

var ErrFrameTooLarge = errors.New("frame too large")

// ReadFrame reads one length-prefixed frame. A clean end of input before a
// header returns io.EOF; a frame cut short returns io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	var hdr [protocol.HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if max > 0 && int64(n) > int64(max) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, max)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

func WriteFrame(w io.Writer, body []byte) error {
	buf := make([]byte, protocol.HeaderSize+len(body))
	binary.BigEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[protocol.HeaderSize:], body)
	_, err := w.Write(buf)
	return err
}

// FrameConn is a Conn that writes whole frames to w, one writer at a time.
type FrameConn struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFrameConn(w io.Writer) *FrameConn {
	return &FrameConn{w: w}
}

func (c *FrameConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteFrame(c.w, b)
}

func (c *FrameConn) Close() error {
	if cl, ok := c.w.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
