// Package ximtest provides an in-memory double of the x11.Conn
// interface, for exercising the client and server state machines
// without a real X server (spec.md section 9 "Design Notes": the
// transport is abstracted specifically so it can be faked this way).
package ximtest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/go-xim/xim/x11"
)

// bus is the shared state two paired Conns (a simulated client and
// server sharing one display) communicate through: an atom table,
// window/property storage, and selection ownership, all guarded by
// one mutex since the protocol this module implements is
// single-threaded and cooperative on each side (spec.md section 5).
type bus struct {
	mu sync.Mutex

	nextAtom x11.Atom
	atoms    map[string]x11.Atom
	names    map[x11.Atom]string

	nextWindow x11.Window
	props      map[x11.Window]map[x11.Atom]property
	selections map[x11.Atom]x11.Window

	order x11.ByteOrder
}

type property struct {
	typ  x11.Atom
	data []byte
}

func newBus(order x11.ByteOrder) *bus {
	return &bus{
		nextAtom:   1,
		atoms:      make(map[string]x11.Atom),
		names:      make(map[x11.Atom]string),
		nextWindow: 1,
		props:      make(map[x11.Window]map[x11.Atom]property),
		selections: make(map[x11.Atom]x11.Window),
		order:      order,
	}
}

func (b *bus) internAtom(name string, onlyIfExists bool) (x11.Atom, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if a, ok := b.atoms[name]; ok {
		return a, nil
	}
	if onlyIfExists {
		return x11.None, nil
	}

	a := b.nextAtom
	b.nextAtom++
	b.atoms[name] = a
	b.names[a] = name
	return a, nil
}

// Conn is one endpoint of a simulated display shared with a paired
// Conn. Events sent to a window owned by the peer are delivered on
// the peer's NextEvent channel.
type Conn struct {
	bus    *bus
	self   x11.Window
	peer   *Conn
	events chan x11.Event
}

// NewConnPair returns two connected endpoints sharing one simulated
// display, as a client and server of the same XIM session would.
func NewConnPair(order x11.ByteOrder) (client, server *Conn) {
	b := newBus(order)

	client = &Conn{bus: b, self: b.allocWindow(), events: make(chan x11.Event, 64)}
	server = &Conn{bus: b, self: b.allocWindow(), events: make(chan x11.Event, 64)}
	client.peer = server
	server.peer = client

	return client, server
}

func (b *bus) allocWindow() x11.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.nextWindow
	b.nextWindow++
	return w
}

func (c *Conn) InternAtom(name string, onlyIfExists bool) (x11.Atom, error) {
	return c.bus.internAtom(name, onlyIfExists)
}

func (c *Conn) AtomName(a x11.Atom) (string, error) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	return c.bus.names[a], nil
}

func (c *Conn) RootWindow() x11.Window { return 0 }

func (c *Conn) CreateWindow() (x11.Window, error) {
	return c.bus.allocWindow(), nil
}

func (c *Conn) DestroyWindow(w x11.Window) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	delete(c.bus.props, w)
	return nil
}

// SendClientMessage delivers msg to the peer's event stream. The
// real transport addresses messages by window id; since each Conn in
// a pair represents exactly one participant, the message always goes
// to the peer regardless of the window field, matching how a real
// ClientMessage sent to the peer's window would arrive.
func (c *Conn) SendClientMessage(w x11.Window, msg x11.ClientMessage, propagate bool) error {
	c.peer.events <- x11.ClientMessageEvent{ClientMessage: msg}
	return nil
}

func (c *Conn) GetProperty(w x11.Window, prop x11.Atom, del bool) (x11.Atom, []byte, error) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()

	props, ok := c.bus.props[w]
	if !ok {
		return x11.None, nil, nil
	}

	p, ok := props[prop]
	if !ok {
		return x11.None, nil, nil
	}

	if del {
		delete(props, prop)
	}

	return p.typ, p.data, nil
}

func (c *Conn) SetProperty(w x11.Window, prop x11.Atom, typ x11.Atom, format x11.Format, data []byte) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()

	if c.bus.props[w] == nil {
		c.bus.props[w] = make(map[x11.Atom]property)
	}
	c.bus.props[w][prop] = property{typ: typ, data: append([]byte(nil), data...)}
	return nil
}

func (c *Conn) DeleteProperty(w x11.Window, prop x11.Atom) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	delete(c.bus.props[w], prop)
	return nil
}

func (c *Conn) SelectionOwner(selection x11.Atom) (x11.Window, error) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	return c.bus.selections[selection], nil
}

func (c *Conn) SetSelectionOwner(selection x11.Atom, w x11.Window) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	c.bus.selections[selection] = w
	return nil
}

func (c *Conn) NextEvent(done <-chan struct{}) (x11.Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-done:
		return nil, x11.ErrClosed
	}
}

func (c *Conn) ByteOrder() x11.ByteOrder { return c.bus.order }

func (c *Conn) Close() error { return nil }

// UniquePropertyName returns a property name guaranteed not to
// collide with one used by a concurrently running test against the
// same simulated display, for tests that exercise the long-PDU
// property transport path in parallel.
func UniquePropertyName() string {
	return "_XIM_TEST_" + uuid.NewString()
}
