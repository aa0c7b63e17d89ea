package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// GetIMValues requests the current value of a set of input-method
// level attribute ids (spec.md section 4.5 "Open/query").
type GetIMValues struct {
	ImID uint16
	IDs  []uint16
}

func (GetIMValues) Opcode() Opcode { return OpGetIMValues }

func (g GetIMValues) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, g.ImID, uint16(len(g.IDs)))
	if err != nil {
		return n, err
	}

	for _, id := range g.IDs {
		nn, err := wirecodec.WriteTo(w, order, id)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (g *GetIMValues) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var count uint16
	n, err := wirecodec.ReadFrom(r, order, &g.ImID, &count)
	if err != nil {
		return n, err
	}

	g.IDs = make([]uint16, count)
	for i := range g.IDs {
		nn, err := wirecodec.ReadFrom(r, order, &g.IDs[i])
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// GetIMValuesReply returns the requested input-method attribute values.
type GetIMValuesReply struct {
	ImID  uint16
	Attrs AttributeList
}

func (GetIMValuesReply) Opcode() Opcode { return OpGetIMValuesReply }

func (g GetIMValuesReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, g.ImID, uint16(0))
	if err != nil {
		return n, err
	}
	nn, err := g.Attrs.WriteTo(w, order)
	return n + nn, err
}

func (g *GetIMValuesReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	n, err := wirecodec.ReadFrom(r, order, &g.ImID, &pad)
	if err != nil {
		return n, err
	}
	nn, err := g.Attrs.ReadFrom(r, order, OpGetIMValuesReply)
	return n + nn, err
}

// SetIMValues updates a subset of an input method's attributes.
type SetIMValues struct {
	ImID  uint16
	Attrs AttributeList
}

func (SetIMValues) Opcode() Opcode { return OpSetIMValues }

func (s SetIMValues) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, s.ImID, uint16(0))
	if err != nil {
		return n, err
	}
	nn, err := s.Attrs.WriteTo(w, order)
	return n + nn, err
}

func (s *SetIMValues) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	n, err := wirecodec.ReadFrom(r, order, &s.ImID, &pad)
	if err != nil {
		return n, err
	}
	nn, err := s.Attrs.ReadFrom(r, order, OpSetIMValues)
	return n + nn, err
}

// SetIMValuesReply acknowledges SetIMValues.
type SetIMValuesReply struct{ ImID uint16 }

func (SetIMValuesReply) Opcode() Opcode { return OpSetIMValuesReply }

func (s SetIMValuesReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, s.ImID, uint16(0))
}

func (s *SetIMValuesReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	return wirecodec.ReadFrom(r, order, &s.ImID, &pad)
}

// QueryExtension asks the server which of a set of named extensions it
// supports. Extension semantics beyond discovery are out of scope
// (spec.md section 1 Non-goals): the server always replies with an
// empty extension list.
type QueryExtension struct {
	ImID  uint16
	Names []Str
}

func (QueryExtension) Opcode() Opcode { return OpQueryExtension }

func (q QueryExtension) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	var body writeBuf
	for _, name := range q.Names {
		name.WriteTo(&body, order)
	}

	n, err := wirecodec.WriteTo(w, order, q.ImID, uint16(len(body.Bytes())))
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WritePadded(w, body.Bytes())
	return n + nn, err
}

func (q *QueryExtension) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var byteLen uint16
	n, err := wirecodec.ReadFrom(r, order, &q.ImID, &byteLen)
	if err != nil {
		return n, err
	}

	body, nn, err := wirecodec.ReadPadded(r, int(byteLen))
	n += nn
	if err != nil {
		return n, err
	}

	br := &byteReader{b: body}
	q.Names = nil
	for br.remaining() > 0 {
		var s Str
		if _, err := s.ReadFrom(br, order, OpQueryExtension, "names", br.remaining()); err != nil {
			return n, err
		}
		q.Names = append(q.Names, s)
	}

	return n, nil
}

// ExtensionEntry names one supported extension and its opcode range.
type ExtensionEntry struct {
	Major uint8
	Minor uint8
	Name  Str
}

func (e ExtensionEntry) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, e.Major, e.Minor)
	if err != nil {
		return n, err
	}
	nn, err := e.Name.WriteTo(w, order)
	return n + nn, err
}

// QueryExtensionReply enumerates the extensions the server actually
// supports, which per the documented Non-goal is always empty.
type QueryExtensionReply struct {
	ImID       uint16
	Extensions []ExtensionEntry
}

func (QueryExtensionReply) Opcode() Opcode { return OpQueryExtensionReply }

func (q QueryExtensionReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	var body writeBuf
	for _, e := range q.Extensions {
		e.WriteTo(&body, order)
	}

	n, err := wirecodec.WriteTo(w, order, q.ImID, uint16(len(body.Bytes())))
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WritePadded(w, body.Bytes())
	return n + nn, err
}

func (q *QueryExtensionReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var byteLen uint16
	n, err := wirecodec.ReadFrom(r, order, &q.ImID, &byteLen)
	if err != nil {
		return n, err
	}

	body, nn, err := wirecodec.ReadPadded(r, int(byteLen))
	n += nn
	if err != nil {
		return n, err
	}

	br := &byteReader{b: body}
	q.Extensions = nil
	for br.remaining() > 0 {
		var e ExtensionEntry
		if _, err := wirecodec.ReadFrom(br, order, &e.Major, &e.Minor); err != nil {
			return n, err
		}
		if _, err := e.Name.ReadFrom(br, order, OpQueryExtensionReply, "name", br.remaining()); err != nil {
			return n, err
		}
		q.Extensions = append(q.Extensions, e)
	}

	return n, nil
}

// EncodingNegotiation asks the server to pick an encoding from a list
// of acceptable names, with an optional fallback detail list.
type EncodingNegotiation struct {
	ImID       uint16
	Names      []Str
	Details    []uint16
}

func (EncodingNegotiation) Opcode() Opcode { return OpEncodingNegotiation }

func (e EncodingNegotiation) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	var names writeBuf
	for _, name := range e.Names {
		name.WriteTo(&names, order)
	}

	n, err := wirecodec.WriteTo(w, order, e.ImID, uint16(len(names.Bytes())))
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WritePadded(w, names.Bytes())
	n += nn
	if err != nil {
		return n, err
	}

	details := make([]byte, len(e.Details)*2)
	for i, d := range e.Details {
		order.PutUint16(details[i*2:], d)
	}
	nn, err = wirecodec.WriteTo(w, order, uint16(len(details)))
	n += nn
	if err != nil {
		return n, err
	}
	nnn, err := wirecodec.WritePadded(w, details)
	return n + nnn, err
}

func (e *EncodingNegotiation) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var namesLen uint16
	n, err := wirecodec.ReadFrom(r, order, &e.ImID, &namesLen)
	if err != nil {
		return n, err
	}

	namesBody, nn, err := wirecodec.ReadPadded(r, int(namesLen))
	n += nn
	if err != nil {
		return n, err
	}

	br := &byteReader{b: namesBody}
	e.Names = nil
	for br.remaining() > 0 {
		var s Str
		if _, err := s.ReadFrom(br, order, OpEncodingNegotiation, "names", br.remaining()); err != nil {
			return n, err
		}
		e.Names = append(e.Names, s)
	}

	var detailsLen uint16
	nn, err = wirecodec.ReadFrom(r, order, &detailsLen)
	n += nn
	if err != nil {
		return n, err
	}

	detailsBody, nn, err := wirecodec.ReadPadded(r, int(detailsLen))
	n += nn
	if err != nil {
		return n, err
	}

	e.Details = make([]uint16, len(detailsBody)/2)
	for i := range e.Details {
		e.Details[i] = order.Uint16(detailsBody[i*2:])
	}

	return n, nil
}

// EncodingNegotiationReply returns the index of the chosen name (or -1
// if none were acceptable) and the detail index, if any.
type EncodingNegotiationReply struct {
	ImID   uint16
	Index  int16
	Detail int16
}

func (EncodingNegotiationReply) Opcode() Opcode { return OpEncodingNegotiationReply }

func (e EncodingNegotiationReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, e.ImID, e.Index, e.Detail)
}

func (e *EncodingNegotiationReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return wirecodec.ReadFrom(r, order, &e.ImID, &e.Index, &e.Detail)
}
