package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnknownCodec = errors.New("unknown codec")

// Codec serialises envelopes and payloads for one wire format.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
	marshalEnvelope(e Envelope) ([]byte, error)
	unmarshalEnvelope(b []byte) (Envelope, error)
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

type jsonCodec struct{}

type jsonEnvelope struct {
	T   string          `json:"t"`
	Ref uint64          `json:"ref,omitempty"`
	P   json.RawMessage `json:"p"` // raw payload bytes
}

func (jsonCodec) Name() string                    { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

func (jsonCodec) marshalEnvelope(e Envelope) ([]byte, error) {
	return json.Marshal(jsonEnvelope{T: e.T, Ref: e.Ref, P: e.P})
}

func (jsonCodec) unmarshalEnvelope(b []byte) (Envelope, error) {
	var w jsonEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return Envelope{}, err
	}
	return Envelope{T: w.T, Ref: w.Ref, P: w.P}, nil
}

type msgpackCodec struct{}

type msgpackEnvelope struct {
	T   string             `msgpack:"t"`
	Ref uint64             `msgpack:"ref,omitempty"`
	P   msgpack.RawMessage `msgpack:"p"`
}

func (msgpackCodec) Name() string                    { return "msgpack" }
func (msgpackCodec) Marshal(v any) ([]byte, error)   { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(b []byte, v any) error { return msgpack.Unmarshal(b, v) }

func (msgpackCodec) marshalEnvelope(e Envelope) ([]byte, error) {
	return msgpack.Marshal(msgpackEnvelope{T: e.T, Ref: e.Ref, P: e.P})
}

func (msgpackCodec) unmarshalEnvelope(b []byte) (Envelope, error) {
	var w msgpackEnvelope
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return Envelope{}, err
	}
	return Envelope{T: w.T, Ref: w.Ref, P: w.P}, nil
}

func Encode(c Codec, t string, ref uint64, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope type nil")
	}
	if payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload")
	}
	pb, err := c.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.marshalEnvelope(Envelope{T: t, Ref: ref, P: pb})
}

func DecodeEnvelope(c Codec, b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("Error trying to decode Envelope with byte size 0")
	}
	e, err := c.unmarshalEnvelope(b)
	if err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("envelope without type")
	}
	return e, nil
}

func DecodePayload[T any](c Codec, env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := c.Unmarshal(env.P, &out)
	return out, err
}
