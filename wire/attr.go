package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// AttrType is the wire type code of an attribute value, used by both
// sides to marshal nested attribute payloads (spec.md section 4.2/4.4).
type AttrType uint16

const (
	AttrTypeSeparator        AttrType = 0
	AttrTypeCARD8            AttrType = 1
	AttrTypeCARD16           AttrType = 2
	AttrTypeCARD32           AttrType = 3
	AttrTypeWindow           AttrType = 5
	AttrTypeXIMStyles        AttrType = 0x7fee
	AttrTypeXRectangle       AttrType = 0x7fef
	AttrTypeXPoint           AttrType = 0x7ff0
	AttrTypeXFontSet         AttrType = 0x7ff1
	AttrTypeXIMHotKeyTriggers AttrType = 0x7ff2
	AttrTypeNestedList       AttrType = 0x7ff3
)

// Attribute is a single (id, value) pair as exchanged once the
// catalog has assigned ids (spec.md section 3 "Attribute"). The Name
// and Type fields are only meaningful in the OPEN_REPLY enumeration
// that seeds the catalog; every later message refers to attributes by
// ID alone.
type Attribute struct {
	ID    uint16
	Name  []byte
	Type  AttrType
	Value []byte
}

// CatalogEntry is the (name, type, id) triple exchanged during
// OPEN_REPLY to seed both sides' attribute catalogs.
type CatalogEntry struct {
	ID   uint16
	Type AttrType
	Name Str
}

func (e CatalogEntry) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, e.ID, uint16(e.Type))
	if err != nil {
		return n, err
	}
	nn, err := e.Name.WriteTo(w, order)
	return n + nn, err
}

func (e *CatalogEntry) ReadFrom(r io.Reader, order binary.ByteOrder, maxLen int) (int64, error) {
	n, err := wirecodec.ReadFrom(r, order, &e.ID, (*uint16)(&e.Type))
	if err != nil {
		return n, err
	}
	nn, err := e.Name.ReadFrom(r, order, OpOpenReply, "name", maxLen)
	return n + nn, err
}

// AttributeList is a nested, length-prefixed list of (id, value)
// pairs, the NestedList attribute type and the payload of
// SET_IC_VALUES/CREATE_IC/GET_IC_VALUES_REPLY and their IM-level
// counterparts.
type AttributeList struct {
	Attributes []Attribute
}

// WriteTo serializes the list as a u16 byte-length header followed by
// each attribute's id(u16), length(u16), value bytes, and padding.
func (l AttributeList) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	var body []byte
	for _, a := range l.Attributes {
		var buf writeBuf
		wirecodec.WriteTo(&buf, order, a.ID, uint16(len(a.Value)))
		buf.Write(a.Value)
		buf.Write(wirecodec.Pad4Bytes(len(a.Value)))
		body = append(body, buf.Bytes()...)
	}

	n, err := wirecodec.WriteTo(w, order, uint16(len(body)))
	if err != nil {
		return n, err
	}

	nn, err := wirecodec.WritePadded(w, body)
	return n + nn, err
}

// ReadFrom deserializes the list from its u16 byte-length header and
// as many (id, length, value) triples as fit within it.
func (l *AttributeList) ReadFrom(r io.Reader, order binary.ByteOrder, op Opcode) (int64, error) {
	var byteLen uint16
	n, err := wirecodec.ReadFrom(r, order, &byteLen)
	if err != nil {
		return n, err
	}

	body, nn, err := wirecodec.ReadPadded(r, int(byteLen))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n + nn, &MalformedMessage{op, "attributes", "declared length exceeds remaining buffer"}
	}
	if err != nil {
		return n + nn, err
	}

	rest := body
	l.Attributes = nil

	for len(rest) > 0 {
		if len(rest) < 4 {
			return n + nn, &MalformedMessage{op, "attributes", "truncated attribute header"}
		}

		var id, vlen uint16
		id = order.Uint16(rest[0:2])
		vlen = order.Uint16(rest[2:4])
		rest = rest[4:]

		padded := int(vlen) + wirecodec.Pad4(int(vlen))
		if len(rest) < padded {
			return n + nn, &MalformedMessage{op, "attributes", "attribute value overruns list"}
		}

		value := make([]byte, vlen)
		copy(value, rest[:vlen])
		rest = rest[padded:]

		l.Attributes = append(l.Attributes, Attribute{ID: id, Value: value})
	}

	return n + nn, nil
}

// writeBuf is a minimal growable byte buffer, used to pre-assemble an
// attribute list body before its length prefix is known.
type writeBuf struct {
	b []byte
}

func (w *writeBuf) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func (w *writeBuf) Bytes() []byte { return w.b }

// XPoint is a single point, used in preedit caret/feedback geometry.
type XPoint struct {
	X, Y int16
}

func (p XPoint) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, p.X, p.Y)
}

func (p *XPoint) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	return wirecodec.ReadFrom(r, order, &p.X, &p.Y)
}

// XRectangle describes the preedit/status area geometry, returned in
// response to GEOMETRY (spec.md section 4.5).
type XRectangle struct {
	X, Y          int16
	Width, Height uint16
}

func (r XRectangle) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, r.X, r.Y, r.Width, r.Height)
}

func (rect *XRectangle) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	return wirecodec.ReadFrom(r, order, &rect.X, &rect.Y, &rect.Width, &rect.Height)
}

// InputStyle is a single XIM input style bitmask (e.g. preedit
// callbacks + status area, as negotiated at CreateIC time).
type InputStyle uint32

const (
	StylePreeditArea     InputStyle = 0x0001
	StylePreeditPosition InputStyle = 0x0002
	StylePreeditNothing  InputStyle = 0x0004
	StylePreeditCallbacks InputStyle = 0x0008

	StyleStatusArea    InputStyle = 0x0100
	StyleStatusNothing InputStyle = 0x0400
	StyleStatusCallbacks InputStyle = 0x0800
)

// XIMStyles is a counted array of supported input styles, exchanged
// during OPEN_REPLY's im-attribute enumeration.
type XIMStyles struct {
	Styles []InputStyle
}

func (s XIMStyles) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, uint16(len(s.Styles)), uint16(0))
	if err != nil {
		return n, err
	}

	for _, st := range s.Styles {
		nn, err := wirecodec.WriteTo(w, order, uint32(st))
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (s *XIMStyles) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	var count, pad uint16
	n, err := wirecodec.ReadFrom(r, order, &count, &pad)
	if err != nil {
		return n, err
	}

	s.Styles = make([]InputStyle, count)
	for i := range s.Styles {
		var v uint32
		nn, err := wirecodec.ReadFrom(r, order, &v)
		n += nn
		if err != nil {
			return n, err
		}
		s.Styles[i] = InputStyle(v)
	}

	return n, nil
}

// HotKeyTrigger is a single (keysym, modifier, modifier-mask) trigger
// entry, as registered for TRIGGER_NOTIFY.
type HotKeyTrigger struct {
	Keysym      uint32
	Modifier    uint32
	ModifierMask uint32
}

// XIMHotKeyTriggers is a counted array of hot-key trigger entries.
type XIMHotKeyTriggers struct {
	Triggers []HotKeyTrigger
}

func (t XIMHotKeyTriggers) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, uint32(len(t.Triggers)))
	if err != nil {
		return n, err
	}

	for _, trg := range t.Triggers {
		nn, err := wirecodec.WriteTo(w, order, trg.Keysym, trg.Modifier, trg.ModifierMask)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (t *XIMHotKeyTriggers) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	var count uint32
	n, err := wirecodec.ReadFrom(r, order, &count)
	if err != nil {
		return n, err
	}

	t.Triggers = make([]HotKeyTrigger, count)
	for i := range t.Triggers {
		nn, err := wirecodec.ReadFrom(r, order,
			&t.Triggers[i].Keysym, &t.Triggers[i].Modifier, &t.Triggers[i].ModifierMask)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// FeedbackMask describes the rendering hint for a run of preedit
// text: underline, reverse video, highlight, etc. Multiple bits may
// be combined.
type FeedbackMask uint32

const (
	FeedbackReverse    FeedbackMask = 1 << 0
	FeedbackUnderline  FeedbackMask = 1 << 1
	FeedbackHighlight  FeedbackMask = 1 << 2
	FeedbackPrimary    FeedbackMask = 1 << 5
	FeedbackSecondary  FeedbackMask = 1 << 6
	FeedbackTertiary   FeedbackMask = 1 << 7
)

// FeedbackArray is a counted array of per-character feedback masks,
// one entry per rune of the associated preedit string.
type FeedbackArray struct {
	Feedbacks []FeedbackMask
}

func (f FeedbackArray) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, uint32(len(f.Feedbacks)))
	if err != nil {
		return n, err
	}

	for _, fb := range f.Feedbacks {
		nn, err := wirecodec.WriteTo(w, order, uint32(fb))
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (f *FeedbackArray) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	var count uint32
	n, err := wirecodec.ReadFrom(r, order, &count)
	if err != nil {
		return n, err
	}

	f.Feedbacks = make([]FeedbackMask, count)
	for i := range f.Feedbacks {
		var v uint32
		nn, err := wirecodec.ReadFrom(r, order, &v)
		n += nn
		if err != nil {
			return n, err
		}
		f.Feedbacks[i] = FeedbackMask(v)
	}

	return n, nil
}
