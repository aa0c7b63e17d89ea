package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// PreeditStart notifies the client that composition is beginning for
// an input context using preedit callbacks (spec.md section 4.5).
type PreeditStart struct{ ImID, IcID uint16 }

func (PreeditStart) Opcode() Opcode { return OpPreeditStart }
func (p PreeditStart) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
}
func (p *PreeditStart) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	p.ImID, p.IcID = pr.ImID, pr.IcID
	return n, err
}

// PreeditStartReply returns the maximum preedit string length the
// client is willing to accept (-1 meaning unbounded).
type PreeditStartReply struct {
	ImID, IcID uint16
	ReturnValue int32
}

func (PreeditStartReply) Opcode() Opcode { return OpPreeditStartReply }

func (p PreeditStartReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WriteTo(w, order, p.ReturnValue)
	return n + nn, err
}

func (p *PreeditStartReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	p.ImID, p.IcID = pr.ImID, pr.IcID
	nn, err := wirecodec.ReadFrom(r, order, &p.ReturnValue)
	return n + nn, err
}

// PreeditDraw replaces a span of the composition buffer with new text
// and per-character feedback, the workhorse message for preedit
// callback rendering.
type PreeditDraw struct {
	ImID, IcID    uint16
	CaretPosition int32
	ChgFirst      int32
	ChgLength     int32
	Status        int32
	String        Str
	Feedback      FeedbackArray
}

func (PreeditDraw) Opcode() Opcode { return OpPreeditDraw }

func (p PreeditDraw) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}

	nn, err := wirecodec.WriteTo(w, order, p.CaretPosition, p.ChgFirst, p.ChgLength, p.Status)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = p.String.WriteTo(w, order)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = p.Feedback.WriteTo(w, order)
	return n + nn, err
}

func (p *PreeditDraw) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	p.ImID, p.IcID = pr.ImID, pr.IcID

	nn, err := wirecodec.ReadFrom(r, order, &p.CaretPosition, &p.ChgFirst, &p.ChgLength, &p.Status)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = p.String.ReadFrom(r, order, OpPreeditDraw, "string", h.BodyLen()-int(n))
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = p.Feedback.ReadFrom(r, order)
	return n + nn, err
}

// PreeditCaret moves or queries the preedit caret position.
type PreeditCaret struct {
	ImID, IcID uint16
	Position   int32
	Direction  uint32
	Style      uint32
}

func (PreeditCaret) Opcode() Opcode { return OpPreeditCaret }

func (p PreeditCaret) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WriteTo(w, order, p.Position, p.Direction, p.Style)
	return n + nn, err
}

func (p *PreeditCaret) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	p.ImID, p.IcID = pr.ImID, pr.IcID
	nn, err := wirecodec.ReadFrom(r, order, &p.Position, &p.Direction, &p.Style)
	return n + nn, err
}

// PreeditCaretReply answers PreeditCaret with the caret's new or
// current position.
type PreeditCaretReply struct {
	ImID, IcID uint16
	Position   int32
}

func (PreeditCaretReply) Opcode() Opcode { return OpPreeditCaretReply }

func (p PreeditCaretReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WriteTo(w, order, p.Position)
	return n + nn, err
}

func (p *PreeditCaretReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	p.ImID, p.IcID = pr.ImID, pr.IcID
	nn, err := wirecodec.ReadFrom(r, order, &p.Position)
	return n + nn, err
}

// PreeditDone notifies the client that composition has ended.
type PreeditDone struct{ ImID, IcID uint16 }

func (PreeditDone) Opcode() Opcode { return OpPreeditDone }
func (p PreeditDone) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{p.ImID, p.IcID}.WriteTo(w, order)
}
func (p *PreeditDone) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	pr := imIcPair{}
	n, err := pr.ReadFrom(r, order)
	p.ImID, p.IcID = pr.ImID, pr.IcID
	return n, err
}
