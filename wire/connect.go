package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
	"github.com/go-xim/xim/x11"
)

// Connect is the first message of every session: it advertises the
// local byte order and proposed protocol version (spec.md section 4.5
// "Connect handshake"). Non-goals: only the running machine's byte
// order is ever advertised or accepted, and auth negotiation beyond
// discovery is unsupported, so AuthNames is always empty in practice
// but round-trips correctly when a peer sends one anyway.
type Connect struct {
	ByteOrder x11.ByteOrder
	Major     uint16
	Minor     uint16
	AuthNames []Str
}

func (Connect) Opcode() Opcode { return OpConnect }

func (c Connect) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, byte(c.ByteOrder), byte(0), c.Major, c.Minor, uint16(len(c.AuthNames)))
	if err != nil {
		return n, err
	}

	for _, name := range c.AuthNames {
		nn, err := name.WriteTo(w, order)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (c *Connect) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var byteOrder, zero byte
	var count uint16

	n, err := wirecodec.ReadFrom(r, order, &byteOrder, &zero, &c.Major, &c.Minor, &count)
	if err != nil {
		return n, err
	}

	c.ByteOrder = x11.ByteOrder(byteOrder)
	c.AuthNames = make([]Str, count)

	remaining := h.BodyLen() - int(n)
	for i := range c.AuthNames {
		nn, err := c.AuthNames[i].ReadFrom(r, order, OpConnect, "auth-names", remaining)
		n += nn
		remaining -= int(nn)
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// ConnectReply confirms the protocol version the server accepts.
type ConnectReply struct {
	Major uint16
	Minor uint16
}

func (ConnectReply) Opcode() Opcode { return OpConnectReply }

func (c ConnectReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, c.Major, c.Minor)
}

func (c *ConnectReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return wirecodec.ReadFrom(r, order, &c.Major, &c.Minor)
}

// Disconnect tears down a session.
type Disconnect struct{}

func (Disconnect) Opcode() Opcode { return OpDisconnect }

func (d Disconnect) Encode(w io.Writer, order binary.ByteOrder) (int64, error) { return 0, nil }
func (d *Disconnect) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return 0, nil
}

// DisconnectReply acknowledges a Disconnect.
type DisconnectReply struct{}

func (DisconnectReply) Opcode() Opcode { return OpDisconnectReply }

func (d DisconnectReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) { return 0, nil }
func (d *DisconnectReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return 0, nil
}
