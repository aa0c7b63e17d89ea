package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// Open requests that the server start a new input method session for
// the given locale (spec.md section 4.5 "Open/query").
type Open struct {
	LocaleName Str
}

func (Open) Opcode() Opcode { return OpOpen }

func (o Open) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return o.LocaleName.WriteTo(w, order)
}

func (o *Open) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	return o.LocaleName.ReadFrom(r, order, OpOpen, "locale-name", h.BodyLen())
}

// catalogEntryList is a u16-counted array of CatalogEntry, used by
// OPEN_REPLY to seed both sides' attribute catalogs in one shot.
type catalogEntryList struct {
	Entries []CatalogEntry
}

func (l catalogEntryList) WriteTo(w io.Writer, order binary.ByteOrder) (int64, error) {
	var body writeBuf
	for _, e := range l.Entries {
		e.WriteTo(&body, order)
	}

	n, err := wirecodec.WriteTo(w, order, uint16(len(body.Bytes())))
	if err != nil {
		return n, err
	}

	nn, err := wirecodec.WritePadded(w, body.Bytes())
	return n + nn, err
}

func (l *catalogEntryList) ReadFrom(r io.Reader, order binary.ByteOrder) (int64, error) {
	var byteLen uint16
	n, err := wirecodec.ReadFrom(r, order, &byteLen)
	if err != nil {
		return n, err
	}

	body, nn, err := wirecodec.ReadPadded(r, int(byteLen))
	n += nn
	if err != nil {
		return n, err
	}

	br := &byteReader{b: body}
	l.Entries = nil
	for br.remaining() > 0 {
		var e CatalogEntry
		if _, err := e.ReadFrom(br, order, br.remaining()); err != nil {
			return n, err
		}
		l.Entries = append(l.Entries, e)
	}

	return n, nil
}

// byteReader is a minimal io.Reader over an in-memory slice that
// reports how many bytes remain, used to iterate catalog entries
// packed back-to-back inside a length-delimited body.
type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

func (r *byteReader) remaining() int {
	return len(r.b) - r.pos
}

// OpenReply returns the new input-method id and both sides' attribute
// catalogs (spec.md section 3 "InputMethodId", section 4.4).
type OpenReply struct {
	ImID         uint16
	ImAttrs      []CatalogEntry
	ICAttrs      []CatalogEntry
}

func (OpenReply) Opcode() Opcode { return OpOpenReply }

func (o OpenReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, o.ImID, uint16(0))
	if err != nil {
		return n, err
	}

	nn, err := catalogEntryList{o.ImAttrs}.WriteTo(w, order)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = catalogEntryList{o.ICAttrs}.WriteTo(w, order)
	n += nn
	return n, err
}

func (o *OpenReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	n, err := wirecodec.ReadFrom(r, order, &o.ImID, &pad)
	if err != nil {
		return n, err
	}

	var im, ic catalogEntryList
	nn, err := im.ReadFrom(r, order)
	n += nn
	if err != nil {
		return n, err
	}

	nn, err = ic.ReadFrom(r, order)
	n += nn
	if err != nil {
		return n, err
	}

	o.ImAttrs = im.Entries
	o.ICAttrs = ic.Entries
	return n, nil
}

// Close ends an input method session.
type Close struct {
	ImID uint16
}

func (Close) Opcode() Opcode { return OpClose }

func (c Close) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, c.ImID, uint16(0))
}

func (c *Close) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	return wirecodec.ReadFrom(r, order, &c.ImID, &pad)
}

// CloseReply acknowledges Close.
type CloseReply struct {
	ImID uint16
}

func (CloseReply) Opcode() Opcode { return OpCloseReply }

func (c CloseReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return wirecodec.WriteTo(w, order, c.ImID, uint16(0))
}

func (c *CloseReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var pad uint16
	return wirecodec.ReadFrom(r, order, &c.ImID, &pad)
}
