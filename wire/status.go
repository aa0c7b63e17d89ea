package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// StatusDrawFlag marks whether a StatusDraw carries text or an icon.
type StatusDrawFlag uint16

const (
	StatusDrawText StatusDrawFlag = 0
	StatusDrawBitmap StatusDrawFlag = 1
)

// StatusStart notifies the client that the status area should become
// visible for an input context using status callbacks.
type StatusStart struct{ ImID, IcID uint16 }

func (StatusStart) Opcode() Opcode { return OpStatusStart }
func (s StatusStart) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *StatusStart) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// StatusDraw replaces the status area's displayed text. Only text
// status is carried: no bitmap payload is encoded, the u16 after Type
// is zero padding, and Decode keeps whatever Type the peer sent.
type StatusDraw struct {
	ImID, IcID uint16
	Type       StatusDrawFlag
	String     Str
}

func (StatusDraw) Opcode() Opcode { return OpStatusDraw }

func (s StatusDraw) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}

	nn, err := wirecodec.WriteTo(w, order, uint16(s.Type), uint16(0))
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = s.String.WriteTo(w, order)
	return n + nn, err
}

func (s *StatusDraw) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	s.ImID, s.IcID = p.ImID, p.IcID

	var typ, pad uint16
	nn, err := wirecodec.ReadFrom(r, order, &typ, &pad)
	n += nn
	if err != nil {
		return n, err
	}
	s.Type = StatusDrawFlag(typ)

	nn, err = s.String.ReadFrom(r, order, OpStatusDraw, "string", h.BodyLen()-int(n))
	return n + nn, err
}

// StatusDone notifies the client that the status area should be hidden.
type StatusDone struct{ ImID, IcID uint16 }

func (StatusDone) Opcode() Opcode { return OpStatusDone }
func (s StatusDone) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *StatusDone) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// Geometry requests that the client report the current geometry of
// its preedit/status areas (spec.md section 4.5).
type Geometry struct{ ImID, IcID uint16 }

func (Geometry) Opcode() Opcode { return OpGeometry }
func (g Geometry) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{g.ImID, g.IcID}.WriteTo(w, order)
}
func (g *Geometry) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	g.ImID, g.IcID = p.ImID, p.IcID
	return n, err
}
