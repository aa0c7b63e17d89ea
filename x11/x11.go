// Package x11 describes the narrow interface the xim package needs
// from an X11 connection. It intentionally knows nothing about sockets,
// the X11 wire protocol, or extension negotiation: per spec.md section 1
// those are treated as an external collaborator. Embedders plug in a
// real Xlib/XCB binding; ximtest provides an in-memory double for
// tests.
package x11

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by NextEvent when its done channel closes
// before an event arrives.
var ErrClosed = errors.New("x11: connection closed")

// Atom is an interned X11 atom identifier.
type Atom uint32

// Window is an X11 window identifier. Zero is not a valid window.
type Window uint32

// None is the X11 "no window"/"no atom" sentinel value.
const None = 0

// Format is the ClientMessage/property data format: 8, 16, or 32 bits
// per unit.
type Format uint8

const (
	Format8  Format = 8
	Format16 Format = 16
	Format32 Format = 32
)

// ClientMessage mirrors the fields of an X11 ClientMessage event that
// the framer cares about. Data holds up to 20 bytes (format 8), 10
// uint16s (format 16), or 5 uint32s (format 32); callers read the
// slice that matches Format.
type ClientMessage struct {
	Window   Window
	Type     Atom
	Format   Format
	Data8    [20]byte
	Data16   [10]uint16
	Data32   [5]uint32
}

// Bytes20 returns the raw 20-byte payload of a format-8 ClientMessage.
func (m *ClientMessage) Bytes20() []byte {
	return m.Data8[:]
}

// Longs returns the 5 longs of a format-32 ClientMessage, as the
// property-transport path uses them: [length, atom, 0, 0, 0].
func (m *ClientMessage) Longs() [5]uint32 {
	return m.Data32
}

// Event is the subset of inbound X11 events the transport framer and
// state machines act on.
type Event interface {
	isEvent()
}

// ClientMessageEvent wraps a received ClientMessage.
type ClientMessageEvent struct {
	ClientMessage
}

func (ClientMessageEvent) isEvent() {}

// KeyEvent wraps a raw X11 KeyPress/KeyRelease event forwarded between
// peers via FORWARD_EVENT. The core never parses its contents; it is
// carried as an opaque 32-byte blob per the X11 wire format.
type KeyEvent struct {
	Window Window
	Raw    [32]byte
}

func (KeyEvent) isEvent() {}

// SelectionNotifyEvent reports the result of a ConvertSelection
// request. Conn has no ConvertSelection method, and nothing in this
// module produces this event.
type SelectionNotifyEvent struct {
	Selection Atom
	Owner     Window
}

func (SelectionNotifyEvent) isEvent() {}

// Conn is the abstract X11 connection the xim package is built on. Every
// method it needs from a real display connection is named here; nothing
// else from X11 leaks into the protocol layer.
type Conn interface {
	// InternAtom returns the atom for name, creating it if
	// onlyIfExists is false and it doesn't already exist.
	InternAtom(name string, onlyIfExists bool) (Atom, error)

	// AtomName resolves an atom back to its string name.
	AtomName(a Atom) (string, error)

	// RootWindow returns the root window of the connection's default
	// screen, used to read XIM_SERVERS/LOCALES.
	RootWindow() Window

	// CreateWindow creates an unmapped window usable as a
	// communication window (client side) or a selection-owning
	// window (server side).
	CreateWindow() (Window, error)

	// DestroyWindow destroys a window created by CreateWindow.
	DestroyWindow(w Window) error

	// SendClientMessage sends a ClientMessage event to the given
	// window. propagate controls whether the server should propagate
	// the event if no client has selected input for it.
	SendClientMessage(w Window, msg ClientMessage, propagate bool) error

	// GetProperty reads a window property's raw bytes and its type
	// atom. If delete is true, the property is atomically removed
	// after being read (the framer's expected behavior for the
	// long-PDU path of section 4.3).
	GetProperty(w Window, prop Atom, delete bool) (typ Atom, data []byte, err error)

	// SetProperty writes data to a window property with the given
	// type atom and format.
	SetProperty(w Window, prop Atom, typ Atom, format Format, data []byte) error

	// DeleteProperty removes a window property.
	DeleteProperty(w Window, prop Atom) error

	// SelectionOwner returns the window currently owning selection,
	// or None if unowned.
	SelectionOwner(selection Atom) (Window, error)

	// SetSelectionOwner claims ownership of selection for w (used by
	// the server side to advertise itself under @server=NAME).
	SetSelectionOwner(selection Atom, w Window) error

	// NextEvent blocks until the next event arrives, or the done
	// channel closes. Implementations of the cooperative dispatch
	// loop (section 5) call this from the single dispatch thread.
	NextEvent(done <-chan struct{}) (Event, error)

	// ByteOrder reports the local machine's byte order, advertised
	// and checked during CONNECT (section 4.2 / Non-goals: only the
	// running machine's byte order is ever negotiated).
	ByteOrder() ByteOrder

	// Close releases any resources held by the connection.
	Close() error
}

// ByteOrder is the one-byte CONNECT encoding of endianness: 'B' for
// big-endian, 'l' for little-endian.
type ByteOrder byte

const (
	BigEndian    ByteOrder = 'B'
	LittleEndian ByteOrder = 'l'
)

func (b ByteOrder) String() string {
	switch b {
	case BigEndian:
		return "big-endian"
	case LittleEndian:
		return "little-endian"
	default:
		return fmt.Sprintf("ByteOrder(%q)", byte(b))
	}
}

// Well-known transport atom names (spec.md section 6).
const (
	AtomXIMProtocol = "_XIM_PROTOCOL"
	AtomXIMXConnect = "_XIM_XCONNECT"
	AtomXIMServers  = "XIM_SERVERS"
	AtomLocales     = "LOCALES"
	AtomTransport   = "TRANSPORT"

	// AtomString is the predefined X11 atom XA_STRING, the property
	// type a long PDU transfer is staged with (spec.md section 4.3).
	AtomString = "STRING"
)
