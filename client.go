package xim

import (
	"encoding/binary"

	"github.com/go-xim/xim/wire"
	"github.com/go-xim/xim/x11"
)

// Callbacks receives the server-initiated messages a connected client
// must react to: committed text, preedit updates, and status area
// changes (spec.md section 4.5 "Inbound callbacks"). Any method left
// nil is simply skipped.
type Callbacks struct {
	OnCommit       func(ic *ClientIC, text string)
	OnForward      func(ic *ClientIC, event [32]byte)
	OnPreeditDraw  func(ic *ClientIC, d wire.PreeditDraw)
	OnPreeditStart func(ic *ClientIC)
	OnPreeditCaret func(ic *ClientIC, c wire.PreeditCaret) int32
	OnPreeditDone  func(ic *ClientIC)
	OnStatusDraw   func(ic *ClientIC, text string)
	OnStatusStart  func(ic *ClientIC)
	OnStatusDone   func(ic *ClientIC)

	// OnGeometry answers a GEOMETRY request with the input context's
	// current preedit area (spec.md section 4.5: "embedder returns the
	// preedit area rectangle"). Left nil, the client reports a
	// zero-sized area by updating the session's "area" attribute.
	OnGeometry func(ic *ClientIC) wire.XRectangle

	// OnError reports a server-issued XIM_ERROR for the request named
	// by msg.Code/msg.Detail (SPEC_FULL.md section 3's XIM_ERROR
	// supplement). Left nil, the error is discarded.
	OnError func(msg *wire.Error)
}

// ClientIC is the client's view of one input context it created.
type ClientIC struct {
	ID    uint16
	ImID  uint16
	Style wire.InputStyle
}

// Client drives the protocol side of an XIM client: locating a
// server, completing the CONNECT/OPEN handshake, creating input
// contexts, and forwarding key events for composition (spec.md
// section 4.5).
type Client struct {
	Framer    *Framer
	Callbacks Callbacks

	order   binary.ByteOrder
	catalog *AttributeCatalog
	imID    uint16
	ics     map[uint16]*ClientIC
}

// LocateServer discovers the input method server's window by reading
// the XIM_SERVERS property off the root window and resolving the
// server-name atom to a selection owner (spec.md section 6 "External
// Interfaces": server discovery via XIM_SERVERS/selection ownership).
func LocateServer(conn x11.Conn, serverName string) (x11.Window, error) {
	serversAtom, err := conn.InternAtom(x11.AtomXIMServers, false)
	if err != nil {
		return x11.None, &TransportError{Op: "intern-atom", Err: err}
	}

	_, data, err := conn.GetProperty(conn.RootWindow(), serversAtom, false)
	if err != nil {
		return x11.None, &TransportError{Op: "get-property", Err: err}
	}

	// XIM_SERVERS carries its candidate server-selection atoms as a
	// packed array of CARD32 atom ids (spec.md section 6 bootstrap step
	// 1); a malformed property derails discovery, so it's rejected here
	// rather than silently ignored even though this implementation
	// resolves serverName through SelectionOwner directly below instead
	// of cross-checking it against this enumeration.
	if len(data)%4 != 0 {
		return x11.None, &ProtocolError{State: "locate", Opcode: "-", Reason: "XIM_SERVERS property length is not a multiple of 4"}
	}

	selAtom, err := conn.InternAtom("@server="+serverName, false)
	if err != nil {
		return x11.None, &TransportError{Op: "intern-atom", Err: err}
	}

	owner, err := conn.SelectionOwner(selAtom)
	if err != nil {
		return x11.None, &TransportError{Op: "selection-owner", Err: err}
	}
	if owner == x11.None {
		return x11.None, &ProtocolError{State: "locate", Opcode: "-", Reason: "no owner for server selection"}
	}

	// Bootstrap steps 2-3 (a ClientMessage to owner requesting
	// TRANSPORT, then awaiting its "@transport=X/" reply) are not
	// performed: x11.Conn exposes no ConvertSelection/SelectionNotify
	// round trip, only the ClientMessage transport XIM itself uses, and
	// every x11.Conn this module ships speaks that one transport
	// unconditionally, so there is nothing a negotiated transport
	// string could ever select between (see DESIGN.md).
	return owner, nil
}

// NewClient creates a client bound to a transport framer.
func NewClient(f *Framer) *Client {
	f.side = clientSide
	return &Client{Framer: f, order: NativeByteOrder(), ics: make(map[uint16]*ClientIC)}
}

// Connect performs the CONNECT handshake, advertising the running
// machine's native byte order (spec.md section 1 Non-goals: no other
// order is ever proposed).
func (c *Client) Connect() error {
	if err := c.Framer.Send(c.order, wire.Connect{ByteOrder: NativeX11ByteOrder(), Major: 1, Minor: 0}); err != nil {
		return err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return err
	}

	if _, ok := m.(*wire.ConnectReply); !ok {
		return &ProtocolError{State: "connect", Opcode: "-", Reason: "expected CONNECT_REPLY"}
	}
	return nil
}

// Open opens an input method session for the given locale and builds
// the session's attribute catalog from the server's reply.
func (c *Client) Open(locale string) error {
	localeName, err := ctextEncode(locale)
	if err != nil {
		return err
	}
	if err := c.Framer.Send(c.order, wire.Open{LocaleName: localeName}); err != nil {
		return err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return err
	}

	reply, ok := m.(*wire.OpenReply)
	if !ok {
		return &ProtocolError{State: "open", Opcode: "-", Reason: "expected OPEN_REPLY"}
	}

	catalog, err := NewAttributeCatalog(append(append([]wire.CatalogEntry{}, reply.ImAttrs...), reply.ICAttrs...))
	if err != nil {
		return err
	}

	c.imID = reply.ImID
	c.catalog = catalog
	return nil
}

// QueryExtension asks the server which of the named extensions it
// supports and returns the names the server reports. Nothing of the
// reply is stored, and no extension subprotocol beyond this discovery
// step is implemented (spec.md section 1
// Non-goals).
func (c *Client) QueryExtension(names []string) ([]string, error) {
	req := wire.QueryExtension{ImID: c.imID}
	for _, n := range names {
		req.Names = append(req.Names, wire.NewStr([]byte(n)))
	}

	if err := c.Framer.Send(c.order, req); err != nil {
		return nil, err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return nil, err
	}

	reply, ok := m.(*wire.QueryExtensionReply)
	if !ok {
		return nil, &ProtocolError{State: "query_extension", Opcode: "-", Reason: "expected QUERY_EXTENSION_REPLY"}
	}

	supported := make([]string, len(reply.Extensions))
	for i, e := range reply.Extensions {
		supported[i] = e.Name.String()
	}
	return supported, nil
}

// NegotiateEncoding asks the server to pick an encoding from names, in
// preference order, returning the index it chose or -1 if it rejected
// all of them.
func (c *Client) NegotiateEncoding(names []string) (int, error) {
	req := wire.EncodingNegotiation{ImID: c.imID}
	for _, n := range names {
		req.Names = append(req.Names, wire.NewStr([]byte(n)))
	}

	if err := c.Framer.Send(c.order, req); err != nil {
		return -1, err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return -1, err
	}

	reply, ok := m.(*wire.EncodingNegotiationReply)
	if !ok {
		return -1, &ProtocolError{State: "encoding_negotiation", Opcode: "-", Reason: "expected ENCODING_NEGOTIATION_REPLY"}
	}
	return int(reply.Index), nil
}

// CreateIC creates a new input context with the given attributes.
func (c *Client) CreateIC(v ICAttrValues) (*ClientIC, error) {
	b := NewAttributeBuilder(c.catalog, c.order)
	attrs, err := b.Build(v)
	if err != nil {
		return nil, err
	}

	if err := c.Framer.Send(c.order, wire.CreateIC{ImID: c.imID, Attrs: attrs}); err != nil {
		return nil, err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return nil, err
	}

	reply, ok := m.(*wire.CreateICReply)
	if !ok {
		return nil, &ProtocolError{State: "create_ic", Opcode: "-", Reason: "expected CREATE_IC_REPLY"}
	}

	ic := &ClientIC{ID: reply.IcID, ImID: c.imID, Style: v.InputStyle}
	c.ics[ic.ID] = ic
	return ic, nil
}

// DestroyIC tears down a previously created input context.
func (c *Client) DestroyIC(ic *ClientIC) error {
	if err := c.Framer.Send(c.order, wire.DestroyIC{ImID: c.imID, IcID: ic.ID}); err != nil {
		return err
	}
	delete(c.ics, ic.ID)

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return err
	}
	if _, ok := m.(*wire.DestroyICReply); !ok {
		return &ProtocolError{State: "destroy_ic", Opcode: "-", Reason: "expected DESTROY_IC_REPLY"}
	}
	return nil
}

// reportArea answers a GEOMETRY request by pushing the input
// context's area back through SET_IC_VALUES, the conventional XIM
// mechanism for geometry reporting (there is no dedicated
// GEOMETRY_REPLY PDU in the wire set).
func (c *Client) reportArea(ic *ClientIC, area wire.XRectangle) error {
	if ic == nil {
		return nil
	}

	b := NewAttributeBuilder(c.catalog, c.order)
	if err := b.SetXRectangle(AttrArea, area); err != nil {
		return err
	}

	return c.Framer.Send(c.order, wire.SetICValues{ImID: c.imID, IcID: ic.ID, Attrs: b.List()})
}

// SetFocus and UnsetFocus notify the server of keyboard focus
// transitions for an input context.
func (c *Client) SetFocus(ic *ClientIC) error {
	return c.Framer.Send(c.order, wire.SetICFocus{ImID: c.imID, IcID: ic.ID})
}

func (c *Client) UnsetFocus(ic *ClientIC) error {
	return c.Framer.Send(c.order, wire.UnsetICFocus{ImID: c.imID, IcID: ic.ID})
}

// ForwardKeyEvent hands a raw key event to the input method for
// composition.
func (c *Client) ForwardKeyEvent(ic *ClientIC, event [32]byte, sync bool) error {
	var flags wire.ForwardEventFlag
	if sync {
		flags |= wire.FlagSynchronous
	}
	return c.Framer.Send(c.order, wire.ForwardEvent{ImID: c.imID, IcID: ic.ID, Flags: flags, Event: event})
}

// Dispatch processes exactly one server-initiated message, invoking
// the matching Callbacks entry.
func (c *Client) Dispatch(done <-chan struct{}) error {
	m, err := c.Framer.Receive(c.order, done)
	if err != nil {
		return err
	}

	switch msg := m.(type) {
	case *wire.Commit:
		ic := c.ics[msg.IcID]
		if msg.Flags&wire.CommitChars != 0 && c.Callbacks.OnCommit != nil {
			text, err := ctextDecode(msg.String)
			if err != nil {
				return err
			}
			c.Callbacks.OnCommit(ic, text)
		}
		if msg.Flags&wire.CommitSynchronous != 0 {
			return c.Framer.Send(c.order, wire.SyncReply{ImID: msg.ImID, IcID: msg.IcID})
		}

	case *wire.ForwardEvent:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnForward != nil {
			c.Callbacks.OnForward(ic, msg.Event)
		}
		if msg.Flags&wire.FlagSynchronous != 0 {
			return c.Framer.Send(c.order, wire.SyncReply{ImID: msg.ImID, IcID: msg.IcID})
		}

	case *wire.PreeditStart:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnPreeditStart != nil {
			c.Callbacks.OnPreeditStart(ic)
		}
		return c.Framer.Send(c.order, wire.PreeditStartReply{ImID: msg.ImID, IcID: msg.IcID, ReturnValue: -1})

	case *wire.PreeditDraw:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnPreeditDraw != nil {
			text, err := ctextDecode(msg.String)
			if err != nil {
				return err
			}
			msg.String = wire.NewStr([]byte(text))
			c.Callbacks.OnPreeditDraw(ic, *msg)
		}

	case *wire.PreeditCaret:
		ic := c.ics[msg.IcID]
		position := msg.Position
		if c.Callbacks.OnPreeditCaret != nil {
			position = c.Callbacks.OnPreeditCaret(ic, *msg)
		}
		return c.Framer.Send(c.order, wire.PreeditCaretReply{ImID: msg.ImID, IcID: msg.IcID, Position: position})

	case *wire.PreeditDone:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnPreeditDone != nil {
			c.Callbacks.OnPreeditDone(ic)
		}

	case *wire.StatusStart:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnStatusStart != nil {
			c.Callbacks.OnStatusStart(ic)
		}

	case *wire.StatusDraw:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnStatusDraw != nil {
			text, err := ctextDecode(msg.String)
			if err != nil {
				return err
			}
			c.Callbacks.OnStatusDraw(ic, text)
		}

	case *wire.StatusDone:
		ic := c.ics[msg.IcID]
		if c.Callbacks.OnStatusDone != nil {
			c.Callbacks.OnStatusDone(ic)
		}

	case *wire.Geometry:
		ic := c.ics[msg.IcID]
		var area wire.XRectangle
		if c.Callbacks.OnGeometry != nil {
			area = c.Callbacks.OnGeometry(ic)
		}
		return c.reportArea(ic, area)

	case *wire.Sync:
		return c.Framer.Send(c.order, wire.SyncReply{ImID: msg.ImID, IcID: msg.IcID})

	case *wire.Error:
		if c.Callbacks.OnError != nil {
			c.Callbacks.OnError(msg)
		}
	}

	return nil
}

// Close ends the input method session.
func (c *Client) Close() error {
	if err := c.Framer.Send(c.order, wire.Close{ImID: c.imID}); err != nil {
		return err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return err
	}
	if _, ok := m.(*wire.CloseReply); !ok {
		return &ProtocolError{State: "close", Opcode: "-", Reason: "expected CLOSE_REPLY"}
	}
	return nil
}

// Disconnect tears down the transport session entirely.
func (c *Client) Disconnect() error {
	if err := c.Framer.Send(c.order, wire.Disconnect{}); err != nil {
		return err
	}

	m, err := c.Framer.Receive(c.order, nil)
	if err != nil {
		return err
	}
	if _, ok := m.(*wire.DisconnectReply); !ok {
		return &ProtocolError{State: "disconnect", Opcode: "-", Reason: "expected DISCONNECT_REPLY"}
	}
	return nil
}
