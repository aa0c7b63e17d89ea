package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// HeaderLen is the fixed size, in bytes, of every XIM message header:
// major opcode, minor opcode, and the body length in 4-byte units.
const HeaderLen = 4

// Header is the fixed prefix of every XIM message (spec.md section 4.2).
type Header struct {
	Major Opcode
	Minor uint8

	// Length is the body length in 4-byte units: the invariant from
	// section 3 is len(serialized) == HeaderLen + Length*4.
	Length uint16
}

// BodyLen returns the expected body length in bytes.
func (h Header) BodyLen() int {
	return int(h.Length) * 4
}

// WriteTo serializes the header using order.
func (h *Header) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, h.Major, h.Minor, h.Length)
}

// ReadFrom deserializes the header using order.
func (h *Header) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	return wirecodec.ReadFrom(r, order, &h.Major, &h.Minor, &h.Length)
}

// MalformedMessage reports a codec violation: unexpected opcode, a
// length that disagrees with the bytes actually available, an unknown
// variant discriminant, or a string exceeding its length prefix
// (spec.md section 4.2 / section 7).
type MalformedMessage struct {
	Opcode Opcode
	Field  string
	Reason string
}

func (e *MalformedMessage) Error() string {
	return fmt.Sprintf("wire: malformed %s message, field %q: %s",
		e.Opcode, e.Field, e.Reason)
}
