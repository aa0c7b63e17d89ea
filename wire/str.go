package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// Str is a counted byte string: a u16 length prefix, the raw bytes,
// and zero padding up to the next 4-byte boundary. It carries names,
// locale identifiers, and COMPOUND_TEXT-encoded preedit/status/commit
// strings throughout the wire set.
type Str struct {
	Bytes []byte
}

// NewStr wraps a plain byte slice as a counted string field.
func NewStr(b []byte) Str { return Str{Bytes: b} }

// WriteTo writes a u16 length, the bytes, and alignment padding, in
// the given byte order.
func (s Str) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, uint16(len(s.Bytes)))
	if err != nil {
		return n, err
	}

	nn, err := wirecodec.WritePadded(w, s.Bytes)
	return n + nn, err
}

// ReadFrom reads a counted string in the given byte order. maxLen bounds how many bytes the
// length prefix may declare before the read is rejected as malformed
// (a PDU whose declared length exceeds the remaining buffer is
// rejected, not truncated, per spec.md section 3).
func (s *Str) ReadFrom(r io.Reader, order binary.ByteOrder, op Opcode, field string, maxLen int) (int64, error) {
	var length uint16
	n, err := wirecodec.ReadFrom(r, order, &length)
	if err != nil {
		return n, err
	}

	if maxLen > 0 && int(length) > maxLen {
		return n, &MalformedMessage{op, field, "declared length exceeds remaining buffer"}
	}

	data, nn, err := wirecodec.ReadPadded(r, int(length))
	if err != nil {
		return n + nn, err
	}

	s.Bytes = data
	return n + nn, nil
}

// String returns the counted string's bytes as a Go string.
func (s Str) String() string {
	return string(s.Bytes)
}
