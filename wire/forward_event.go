package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// ForwardEventFlag controls how a FORWARD_EVENT's embedded key event is
// to be handled (spec.md section 4.5 "Inbound callbacks").
type ForwardEventFlag uint16

const (
	// FlagSynchronous requires the receiver to reply with SYNC_REPLY
	// once it has finished processing the forwarded event.
	FlagSynchronous ForwardEventFlag = 1 << 0
	// FlagRequestFilter marks the event as already filtered by the
	// input method and handed back for client disposal.
	FlagRequestFilter ForwardEventFlag = 1 << 1
	// FlagRequestLookup asks the receiver to perform string lookup on
	// the event before further processing.
	FlagRequestLookup ForwardEventFlag = 1 << 2
)

// ForwardEvent carries an opaque X11 key event between client and
// server, either for preprocessing by the input method or for
// dispatch back to the client (spec.md section 4.3's ClientMessage
// framing applies to the PDU as a whole; the 32 bytes here are the
// embedded XKeyEvent payload, copied verbatim by the transport).
type ForwardEvent struct {
	ImID, IcID uint16
	Flags      ForwardEventFlag
	Serial     uint32
	Event      [32]byte
}

func (ForwardEvent) Opcode() Opcode { return OpForwardEvent }

func (f ForwardEvent) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, f.ImID, f.IcID, uint16(f.Flags), f.Serial)
	if err != nil {
		return n, err
	}
	nn, err := w.Write(f.Event[:])
	return n + int64(nn), err
}

func (f *ForwardEvent) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var flags uint16
	n, err := wirecodec.ReadFrom(r, order, &f.ImID, &f.IcID, &flags, &f.Serial)
	if err != nil {
		return n, err
	}
	f.Flags = ForwardEventFlag(flags)

	nn, err := io.ReadFull(r, f.Event[:])
	return n + int64(nn), err
}

// Sync is sent by either peer to request a SYNC_REPLY once all prior
// messages have been processed, establishing a synchronization point
// (spec.md section 4.5/4.6).
type Sync struct{ ImID, IcID uint16 }

func (Sync) Opcode() Opcode { return OpSync }
func (s Sync) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *Sync) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// SyncReply answers a Sync, confirming all prior messages for this IC
// have been processed.
type SyncReply struct{ ImID, IcID uint16 }

func (SyncReply) Opcode() Opcode { return OpSyncReply }
func (s SyncReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{s.ImID, s.IcID}.WriteTo(w, order)
}
func (s *SyncReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	s.ImID, s.IcID = p.ImID, p.IcID
	return n, err
}

// CommitFlag marks which optional fields a Commit message carries.
type CommitFlag uint16

const (
	// CommitSynchronous requires a SYNC_REPLY from the client once the
	// committed string has been consumed.
	CommitSynchronous CommitFlag = 1 << 0
	// CommitChars marks the message as carrying a committed string.
	CommitChars CommitFlag = 1 << 1
	// CommitKeysym marks the message as carrying a committed keysym
	// instead of (or in addition to) a string.
	CommitKeysym CommitFlag = 1 << 2
)

// Commit delivers composed input back to the client, either as a
// COMPOUND_TEXT string, a keysym, or both (spec.md section 4.5
// "Inbound callbacks").
type Commit struct {
	ImID, IcID uint16
	Flags      CommitFlag
	Keysym     uint32
	String     Str
}

func (Commit) Opcode() Opcode { return OpCommit }

func (c Commit) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, c.ImID, c.IcID, uint16(c.Flags))
	if err != nil {
		return n, err
	}

	if c.Flags&CommitKeysym != 0 {
		nn, err := wirecodec.WriteTo(w, order, c.Keysym, uint16(0))
		n += nn
		if err != nil {
			return n, err
		}
	}

	if c.Flags&CommitChars != 0 {
		nn, err := c.String.WriteTo(w, order)
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (c *Commit) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var flags uint16
	n, err := wirecodec.ReadFrom(r, order, &c.ImID, &c.IcID, &flags)
	if err != nil {
		return n, err
	}
	c.Flags = CommitFlag(flags)

	if c.Flags&CommitKeysym != 0 {
		var pad uint16
		nn, err := wirecodec.ReadFrom(r, order, &c.Keysym, &pad)
		n += nn
		if err != nil {
			return n, err
		}
	}

	if c.Flags&CommitChars != 0 {
		nn, err := c.String.ReadFrom(r, order, OpCommit, "string", h.BodyLen()-int(n))
		n += nn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}
