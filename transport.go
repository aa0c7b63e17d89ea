package xim

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-xim/xim/x11"
)

// inlineThreshold is the largest PDU, in bytes, that fits inside a
// single ClientMessage's 20-byte data payload (spec.md section 4.3
// "Transport framer"). Anything larger is staged through a window
// property instead.
const inlineThreshold = 20

// framerSide records which half of an XIM session a Framer plays,
// which determines the prefix of any property name it mints for a
// long PDU transfer (spec.md section 6: "_server%u_%u / _client%u_%u").
// The zero value is clientSide; NewServer sets its Framer to
// serverSide before issuing any sends.
type framerSide int

const (
	clientSide framerSide = iota
	serverSide
)

// Framer maps encoded XIM PDUs onto the two wire shapes the X11
// transport offers: inline ClientMessage data for short PDUs, and a
// property-plus-notification pair for long ones. It holds no
// protocol state of its own; client.go and server.go each own a
// Framer bound to their respective windows.
type Framer struct {
	conn    x11.Conn
	window  x11.Window
	peer    x11.Window
	atom    x11.Atom // _XIM_PROTOCOL, interned once per connection
	strAtom x11.Atom // STRING (XA_STRING), the long-PDU property type
	side    framerSide
	seq     uint32
}

// NewFramer creates a framer that sends to peer and is addressed as
// window on the local side.
func NewFramer(conn x11.Conn, window, peer x11.Window) (*Framer, error) {
	atom, err := conn.InternAtom(x11.AtomXIMProtocol, false)
	if err != nil {
		return nil, &TransportError{Op: "intern-atom", Err: err}
	}
	strAtom, err := conn.InternAtom(x11.AtomString, false)
	if err != nil {
		return nil, &TransportError{Op: "intern-atom", Err: err}
	}
	return &Framer{conn: conn, window: window, peer: peer, atom: atom, strAtom: strAtom}, nil
}

// Send encodes m and delivers it to the peer, choosing inline or
// property transport by its encoded size.
func (f *Framer) Send(order binary.ByteOrder, m Message) error {
	var buf bytes.Buffer
	if _, err := EncodeMessage(&buf, order, m); err != nil {
		return err
	}

	if buf.Len() <= inlineThreshold {
		return f.sendInline(buf.Bytes())
	}
	return f.sendViaProperty(buf.Bytes())
}

func (f *Framer) sendInline(data []byte) error {
	var cm x11.ClientMessage
	cm.Window = f.peer
	cm.Type = f.atom
	cm.Format = x11.Format8
	copy(cm.Data8[:], data)

	if err := f.conn.SendClientMessage(f.peer, cm, false); err != nil {
		return &TransportError{Op: "send-inline", Err: err}
	}
	return nil
}

// propAtomName derives a per-transfer property name, which Send stages
// on the peer's window, following spec.md section 6's "_server%u_%u" /
// "_client%u_%u" naming (section 8 scenario 3's literal "_server1_0").
// XIM servers conventionally reuse a single property per peer; a
// counter-suffixed name is used here so concurrent long PDUs to the
// same peer (rare under the single-threaded cooperative model this
// module implements, but possible across multiple peers sharing a
// Framer's underlying connection) never collide.
func (f *Framer) propAtomName() string {
	prefix := "_client"
	if f.side == serverSide {
		prefix = "_server"
	}
	name := fmt.Sprintf("%s%d_%d", prefix, f.peer, f.seq)
	f.seq++
	return name
}

func (f *Framer) sendViaProperty(data []byte) error {
	name := f.propAtomName()
	prop, err := f.conn.InternAtom(name, false)
	if err != nil {
		return &TransportError{Op: "intern-atom", Err: err}
	}

	// The property is staged on the peer's window, not our own: the
	// peer's Receive reads the named property off its own window
	// (matching how a real IM server/client only ever looks at
	// properties on a window it owns), so the sender must write there
	// for the two sides to agree on where the payload lives. Its type
	// is XA_STRING (spec.md section 4.3), not the _XIM_PROTOCOL atom
	// used to type the ClientMessage itself.
	if err := f.conn.SetProperty(f.peer, prop, f.strAtom, x11.Format8, data); err != nil {
		return &TransportError{Op: "set-property", Err: err}
	}

	var cm x11.ClientMessage
	cm.Window = f.peer
	cm.Type = f.atom
	cm.Format = x11.Format32
	cm.Data32[0] = uint32(len(data))
	cm.Data32[1] = uint32(prop)

	if err := f.conn.SendClientMessage(f.peer, cm, false); err != nil {
		return &TransportError{Op: "send-notify", Err: err}
	}

	return nil
}

// Receive blocks (cooperatively, via done) until one full PDU has
// arrived from the peer, decoding it and returning the Message.
func (f *Framer) Receive(order binary.ByteOrder, done <-chan struct{}) (Message, error) {
	ev, err := f.conn.NextEvent(done)
	if err != nil {
		return nil, &TransportError{Op: "next-event", Err: err}
	}

	cme, ok := ev.(x11.ClientMessageEvent)
	if !ok {
		return nil, &ProtocolError{State: "transport", Opcode: "-", Reason: "expected a ClientMessage event"}
	}

	var data []byte
	switch cme.Format {
	case x11.Format8:
		data = cme.Bytes20()

	case x11.Format32:
		longs := cme.Longs()
		length := longs[0]
		prop := x11.Atom(longs[1])

		typ, propData, err := f.conn.GetProperty(f.window, prop, true)
		if err != nil {
			return nil, &TransportError{Op: "get-property", Err: err}
		}
		if typ != f.strAtom {
			return nil, &ProtocolError{State: "transport", Opcode: "-", Reason: "property type mismatch on long PDU transfer"}
		}
		if uint32(len(propData)) < length {
			return nil, &ProtocolError{State: "transport", Opcode: "-", Reason: "property shorter than announced PDU length"}
		}
		data = propData[:length]

	default:
		return nil, &ProtocolError{State: "transport", Opcode: "-", Reason: "unsupported ClientMessage format"}
	}

	m, _, err := DecodeMessage(bytes.NewReader(data), order)
	return m, err
}
