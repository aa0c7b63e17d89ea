package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// Authentication beyond discovery is out of scope (spec.md section 1
// Non-goals): the messages below round-trip correctly so a peer that
// insists on an auth handshake gets a well-formed AUTH_NG rather than
// a protocol error, but no state machine here ever proposes one.

// AuthRequired is sent by the server to request an authentication
// protocol by name.
type AuthRequired struct {
	Index uint16
}

func (AuthRequired) Opcode() Opcode { return OpAuthRequired }
func (a AuthRequired) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, a.Index)
}
func (a *AuthRequired) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return wirecodec.ReadFrom(r, order, &a.Index)
}

// AuthReply carries opaque authentication protocol data.
type AuthReply struct{ Data Str }

func (AuthReply) Opcode() Opcode { return OpAuthReply }
func (a AuthReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return a.Data.WriteTo(w, order)
}
func (a *AuthReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return a.Data.ReadFrom(r, order, OpAuthReply, "data", h.BodyLen())
}

// AuthNext carries the next round of opaque authentication data.
type AuthNext struct{ Data Str }

func (AuthNext) Opcode() Opcode { return OpAuthNext }
func (a AuthNext) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return a.Data.WriteTo(w, order)
}
func (a *AuthNext) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return a.Data.ReadFrom(r, order, OpAuthNext, "data", h.BodyLen())
}

// AuthSetup carries the opaque data that finalizes an auth handshake.
type AuthSetup struct{ Data Str }

func (AuthSetup) Opcode() Opcode { return OpAuthSetup }
func (a AuthSetup) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return a.Data.WriteTo(w, order)
}
func (a *AuthSetup) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return a.Data.ReadFrom(r, order, OpAuthSetup, "data", h.BodyLen())
}

// AuthNG rejects an authentication attempt outright. It is the only
// AUTH_* message either state machine in this module ever sends.
type AuthNG struct{}

func (AuthNG) Opcode() Opcode { return OpAuthNG }
func (AuthNG) Encode(w io.Writer, order binary.ByteOrder) (int64, error) { return 0, nil }
func (a *AuthNG) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return 0, nil
}
