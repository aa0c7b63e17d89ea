package xim

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/wire"
)

// Message is any XIM PDU body that knows its own opcode and can
// render itself onto the wire (spec.md section 3 "Message").
type Message interface {
	Opcode() wire.Opcode
	Encode(w io.Writer, order binary.ByteOrder) (int64, error)
}

// decoder is implemented by the pointer receiver of every Message, so
// the registry can allocate a zero value and decode into it.
type decoder interface {
	Decode(r io.Reader, order binary.ByteOrder, h wire.Header) (int64, error)
}

// registry maps an opcode to a constructor for the zero value of its
// Message type. It is fixed at init time; there is no dynamic
// registration, since the message set is the whole of the protocol
// this module implements (spec.md section 1 Non-goals: no extension
// subprotocols beyond discovery).
var registry = map[wire.Opcode]func() decoder{
	wire.OpConnect:                 func() decoder { return new(wire.Connect) },
	wire.OpConnectReply:            func() decoder { return new(wire.ConnectReply) },
	wire.OpDisconnect:              func() decoder { return new(wire.Disconnect) },
	wire.OpDisconnectReply:         func() decoder { return new(wire.DisconnectReply) },
	wire.OpAuthRequired:            func() decoder { return new(wire.AuthRequired) },
	wire.OpAuthReply:               func() decoder { return new(wire.AuthReply) },
	wire.OpAuthNext:                func() decoder { return new(wire.AuthNext) },
	wire.OpAuthSetup:               func() decoder { return new(wire.AuthSetup) },
	wire.OpAuthNG:                  func() decoder { return new(wire.AuthNG) },
	wire.OpError:                   func() decoder { return new(wire.Error) },
	wire.OpOpen:                    func() decoder { return new(wire.Open) },
	wire.OpOpenReply:               func() decoder { return new(wire.OpenReply) },
	wire.OpClose:                   func() decoder { return new(wire.Close) },
	wire.OpCloseReply:              func() decoder { return new(wire.CloseReply) },
	wire.OpTriggerNotify:           func() decoder { return new(wire.TriggerNotify) },
	wire.OpTriggerNotifyReply:      func() decoder { return new(wire.TriggerNotifyReply) },
	wire.OpEncodingNegotiation:     func() decoder { return new(wire.EncodingNegotiation) },
	wire.OpEncodingNegotiationReply: func() decoder { return new(wire.EncodingNegotiationReply) },
	wire.OpQueryExtension:          func() decoder { return new(wire.QueryExtension) },
	wire.OpQueryExtensionReply:     func() decoder { return new(wire.QueryExtensionReply) },
	wire.OpSetIMValues:             func() decoder { return new(wire.SetIMValues) },
	wire.OpSetIMValuesReply:        func() decoder { return new(wire.SetIMValuesReply) },
	wire.OpGetIMValues:             func() decoder { return new(wire.GetIMValues) },
	wire.OpGetIMValuesReply:        func() decoder { return new(wire.GetIMValuesReply) },
	wire.OpCreateIC:                func() decoder { return new(wire.CreateIC) },
	wire.OpCreateICReply:           func() decoder { return new(wire.CreateICReply) },
	wire.OpDestroyIC:               func() decoder { return new(wire.DestroyIC) },
	wire.OpDestroyICReply:          func() decoder { return new(wire.DestroyICReply) },
	wire.OpSetICValues:             func() decoder { return new(wire.SetICValues) },
	wire.OpSetICValuesReply:        func() decoder { return new(wire.SetICValuesReply) },
	wire.OpGetICValues:             func() decoder { return new(wire.GetICValues) },
	wire.OpGetICValuesReply:        func() decoder { return new(wire.GetICValuesReply) },
	wire.OpSetICFocus:              func() decoder { return new(wire.SetICFocus) },
	wire.OpUnsetICFocus:            func() decoder { return new(wire.UnsetICFocus) },
	wire.OpForwardEvent:            func() decoder { return new(wire.ForwardEvent) },
	wire.OpSync:                    func() decoder { return new(wire.Sync) },
	wire.OpSyncReply:               func() decoder { return new(wire.SyncReply) },
	wire.OpCommit:                  func() decoder { return new(wire.Commit) },
	wire.OpResetIC:                 func() decoder { return new(wire.ResetIC) },
	wire.OpResetICReply:            func() decoder { return new(wire.ResetICReply) },
	wire.OpGeometry:                func() decoder { return new(wire.Geometry) },
	wire.OpPreeditStart:            func() decoder { return new(wire.PreeditStart) },
	wire.OpPreeditStartReply:       func() decoder { return new(wire.PreeditStartReply) },
	wire.OpPreeditDraw:             func() decoder { return new(wire.PreeditDraw) },
	wire.OpPreeditCaret:            func() decoder { return new(wire.PreeditCaret) },
	wire.OpPreeditCaretReply:       func() decoder { return new(wire.PreeditCaretReply) },
	wire.OpPreeditDone:             func() decoder { return new(wire.PreeditDone) },
	wire.OpStatusStart:             func() decoder { return new(wire.StatusStart) },
	wire.OpStatusDraw:              func() decoder { return new(wire.StatusDraw) },
	wire.OpStatusDone:              func() decoder { return new(wire.StatusDone) },
}

// EncodeMessage renders a PDU's header and body. The body is
// marshaled into a scratch buffer first so the header's length field
// (measured in 4-byte units, spec.md section 3 "PDU") can be computed
// before anything is written to w.
//
// Individual fields pad themselves relative to their own start, which
// keeps a following fixed-size field aligned but does not guarantee
// the body as a whole ends on a 4-byte boundary (a message whose last
// field is a single counted string or list, with no fixed field ahead
// of it to absorb its length prefix, is the common case). The trailing
// pad added here closes that gap; decoders never need it since each
// body is already bounded by the header's declared length.
func EncodeMessage(w io.Writer, order binary.ByteOrder, m Message) (int64, error) {
	var body bytes.Buffer
	if _, err := m.Encode(&body, order); err != nil {
		return 0, err
	}

	if pad := body.Len() % 4; pad != 0 {
		body.Write(make([]byte, 4-pad))
	}

	h := wire.Header{
		Major:  m.Opcode(),
		Length: uint16(body.Len() / 4),
	}

	n, err := h.WriteTo(w, order)
	if err != nil {
		return n, err
	}

	nn, err := body.WriteTo(w)
	return n + nn, err
}

// DecodeMessage reads one PDU's header, then dispatches the body to
// the decoder registered for its opcode.
func DecodeMessage(r io.Reader, order binary.ByteOrder) (Message, int64, error) {
	var h wire.Header
	n, err := h.ReadFrom(r, order)
	if err != nil {
		return nil, n, err
	}

	mk, ok := registry[h.Major]
	if !ok {
		return nil, n, &wire.MalformedMessage{Opcode: h.Major, Field: "major-opcode", Reason: "unrecognized opcode"}
	}

	d := mk()
	body := io.LimitReader(r, int64(h.BodyLen()))
	nn, err := d.Decode(body, order, h)
	n += nn
	if err != nil {
		return nil, n, err
	}

	return d.(Message), n, nil
}
