package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// CreateIC requests a new input context under an open input method
// (spec.md section 4.5 "Per-IC lifecycle").
type CreateIC struct {
	ImID  uint16
	Attrs AttributeList
}

func (CreateIC) Opcode() Opcode { return OpCreateIC }

func (c CreateIC) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, c.ImID, uint16(0))
	if err != nil {
		return n, err
	}
	nn, err := c.Attrs.WriteTo(w, order)
	return n + nn, err
}

func (c *CreateIC) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	n, err := wirecodec.ReadFrom(r, order, &c.ImID, &pad)
	if err != nil {
		return n, err
	}
	nn, err := c.Attrs.ReadFrom(r, order, OpCreateIC)
	return n + nn, err
}

// CreateICReply returns the newly allocated input context id
// (spec.md section 3 "InputContextId").
type CreateICReply struct {
	ImID uint16
	IcID uint16
}

func (CreateICReply) Opcode() Opcode { return OpCreateICReply }

func (c CreateICReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, c.ImID, c.IcID)
}

func (c *CreateICReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return wirecodec.ReadFrom(r, order, &c.ImID, &c.IcID)
}

// imIcPair is the (ImID, IcID) header shared by most per-IC messages.
type imIcPair struct {
	ImID uint16
	IcID uint16
}

func (p imIcPair) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, p.ImID, p.IcID)
}

func (p *imIcPair) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	return wirecodec.ReadFrom(r, order, &p.ImID, &p.IcID)
}

// DestroyIC destroys a previously created input context.
type DestroyIC struct{ ImID, IcID uint16 }

func (DestroyIC) Opcode() Opcode { return OpDestroyIC }
func (d DestroyIC) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{d.ImID, d.IcID}.WriteTo(w, order)
}
func (d *DestroyIC) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	d.ImID, d.IcID = p.ImID, p.IcID
	return n, err
}

// DestroyICReply acknowledges DestroyIC.
type DestroyICReply struct{ ImID, IcID uint16 }

func (DestroyICReply) Opcode() Opcode { return OpDestroyICReply }
func (d DestroyICReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{d.ImID, d.IcID}.WriteTo(w, order)
}
func (d *DestroyICReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	d.ImID, d.IcID = p.ImID, p.IcID
	return n, err
}

// SetICValues updates a subset of an input context's attributes.
type SetICValues struct {
	ImID, IcID uint16
	Attrs      AttributeList
}

func (SetICValues) Opcode() Opcode { return OpSetICValues }

func (s SetICValues) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := s.Attrs.WriteTo(w, order)
	return n + nn, err
}

func (s *SetICValues) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	s.ImID, s.IcID = p.ImID, p.IcID
	nn, err := s.Attrs.ReadFrom(r, order, OpSetICValues)
	return n + nn, err
}

// SetICValuesReply acknowledges SetICValues.
type SetICValuesReply struct{ ImID, IcID uint16 }

func (SetICValuesReply) Opcode() Opcode { return OpSetICValuesReply }
func (s SetICValuesReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *SetICValuesReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// GetICValues requests the current value of a set of attribute ids.
type GetICValues struct {
	ImID, IcID uint16
	IDs        []uint16
}

func (GetICValues) Opcode() Opcode { return OpGetICValues }

func (g GetICValues) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{g.ImID, g.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}

	body := make([]byte, len(g.IDs)*2)
	for i, id := range g.IDs {
		order.PutUint16(body[i*2:], id)
	}

	nn, err := wirecodec.WriteTo(w, order, uint16(len(body)))
	n += nn
	if err != nil {
		return n, err
	}
	nnn, err := wirecodec.WritePadded(w, body)
	return n + nnn, err
}

func (g *GetICValues) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	g.ImID, g.IcID = p.ImID, p.IcID

	var byteLen uint16
	nn, err := wirecodec.ReadFrom(r, order, &byteLen)
	n += nn
	if err != nil {
		return n, err
	}

	body, nnn, err := wirecodec.ReadPadded(r, int(byteLen))
	n += nnn
	if err != nil {
		return n, err
	}

	g.IDs = make([]uint16, len(body)/2)
	for i := range g.IDs {
		g.IDs[i] = order.Uint16(body[i*2:])
	}

	return n, nil
}

// GetICValuesReply returns the requested attribute values.
type GetICValuesReply struct {
	ImID, IcID uint16
	Attrs      AttributeList
}

func (GetICValuesReply) Opcode() Opcode { return OpGetICValuesReply }

func (g GetICValuesReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{g.ImID, g.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := g.Attrs.WriteTo(w, order)
	return n + nn, err
}

func (g *GetICValuesReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	g.ImID, g.IcID = p.ImID, p.IcID
	nn, err := g.Attrs.ReadFrom(r, order, OpGetICValuesReply)
	return n + nn, err
}

// SetICFocus marks an input context as having keyboard focus.
type SetICFocus struct{ ImID, IcID uint16 }

func (SetICFocus) Opcode() Opcode { return OpSetICFocus }
func (s SetICFocus) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *SetICFocus) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// UnsetICFocus removes keyboard focus from an input context.
type UnsetICFocus struct{ ImID, IcID uint16 }

func (UnsetICFocus) Opcode() Opcode { return OpUnsetICFocus }
func (u UnsetICFocus) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{u.ImID, u.IcID}.WriteTo(w, order)
}
func (u *UnsetICFocus) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	u.ImID, u.IcID = p.ImID, p.IcID
	return n, err
}

// ResetIC clears an input context's composition state, discarding any
// preedit without committing it, and returns any pending composed
// string (supplemented in SPEC_FULL.md section 3, conventional XIM
// RESET_IC semantics).
type ResetIC struct{ ImID, IcID uint16 }

func (ResetIC) Opcode() Opcode { return OpResetIC }
func (r ResetIC) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{r.ImID, r.IcID}.WriteTo(w, order)
}
func (rst *ResetIC) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	rst.ImID, rst.IcID = p.ImID, p.IcID
	return n, err
}

// ResetICReply returns the string that was composed but not yet
// committed at the time of the reset.
type ResetICReply struct {
	ImID, IcID uint16
	String     Str
}

func (ResetICReply) Opcode() Opcode { return OpResetICReply }

func (r ResetICReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{r.ImID, r.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := r.String.WriteTo(w, order)
	return n + nn, err
}

func (r *ResetICReply) Decode(rd io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(rd, order)
	if err != nil {
		return n, err
	}
	r.ImID, r.IcID = p.ImID, p.IcID
	nn, err := r.String.ReadFrom(rd, order, OpResetICReply, "string", h.BodyLen()-int(n))
	return n + nn, err
}
