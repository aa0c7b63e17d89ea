package xim

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/go-xim/xim/wire"
)

// Responder lets a KeyHandler answer an incoming key event: commit
// composed text, forward the raw event back unmodified, start or
// update preedit/status composition, or leave it pending for a later
// commit (spec.md section 4.6 "handle_key Action routing").
type Responder interface {
	Commit(s string) error
	Forward(serial uint32, event [32]byte) error
	PreeditUpdate(s string, caret int, feedback []wire.FeedbackMask) error
	PreeditDone() error
	StatusUpdate(s string, feedback []wire.FeedbackMask) error
	StatusDone() error
}

// KeyHandler processes one forwarded key event for an input context.
// Implementations are application-supplied input method engines.
type KeyHandler interface {
	HandleKey(ic *InputContext, serial uint32, event [32]byte, r Responder) error
}

// KeyHandlerFunc adapts a plain function to a KeyHandler.
type KeyHandlerFunc func(*InputContext, uint32, [32]byte, Responder) error

func (f KeyHandlerFunc) HandleKey(ic *InputContext, serial uint32, event [32]byte, r Responder) error {
	return f(ic, serial, event, r)
}

// DiscardKeyHandler forwards every key event back unfiltered, preserving
// its original serial (spec.md section 8 scenario 5: a passthrough
// forward must carry the same serial the client sent).
var DiscardKeyHandler = KeyHandlerFunc(func(ic *InputContext, serial uint32, event [32]byte, r Responder) error {
	return r.Forward(serial, event)
})

// InputMethod is the server's view of one OPEN session.
type InputMethod struct {
	ID      uint16
	Locale  string
	Catalog *AttributeCatalog
}

// InputContext is the server's view of one CREATE_IC session.
type InputContext struct {
	ID      uint16
	IM      *InputMethod
	Style   wire.InputStyle
	Window  uint32
	Focused bool

	Area         wire.XRectangle
	SpotLocation wire.XPoint
	AreaNeeded   wire.XRectangle

	preeditStarted bool
	statusStarted  bool

	// preeditReplyPending is true between sending a PREEDIT_START and
	// receiving its PREEDIT_START_REPLY (spec.md section 4.6: the
	// server must not forward further key events for this IC until the
	// synchronous reply arrives).
	preeditReplyPending bool
	queuedEvents        []queuedForwardEvent
}

// queuedForwardEvent is one FORWARD_EVENT held back while an input
// context has a synchronous reply outstanding.
type queuedForwardEvent struct {
	imID, icID uint16
	flags      wire.ForwardEventFlag
	serial     uint32
	event      [32]byte
}

// MaxQueuedKeyEvents bounds how many key events a single input context
// may have held back while waiting on a synchronous reply (spec.md
// section 7 "Resource errors").
const MaxQueuedKeyEvents = 32

// pendingSync is one outstanding SYNC awaiting its SYNC_REPLY, kept
// in a FIFO so replies are issued in request order (spec.md section
// 4.6: a single-threaded server processing messages cooperatively
// has no need for anything richer than a queue here).
type pendingSync struct {
	imID, icID uint16
	sentAt     time.Time
}

// Server implements the protocol side of an XIM input method server:
// it allocates IM/IC ids, maintains the attribute catalog, and routes
// forwarded key events to a KeyHandler (spec.md section 4.6).
type Server struct {
	Framer  *Framer
	Handler KeyHandler
	Metrics Recorder

	order   binary.ByteOrder
	nextIM  uint16
	nextIC  uint16
	ims     map[uint16]*InputMethod
	ics     map[uint16]*InputContext
	pending []pendingSync
}

// NewServer creates a server bound to a transport framer. The server
// answers the peer's CONNECT itself, including its byte-order check.
func NewServer(f *Framer, order binary.ByteOrder, h KeyHandler) *Server {
	if h == nil {
		h = DiscardKeyHandler
	}
	f.side = serverSide
	return &Server{
		Framer:  f,
		Handler: h,
		Metrics: NoopRecorder{},
		order:   order,
		nextIM:  1,
		nextIC:  1,
		ims:     make(map[uint16]*InputMethod),
		ics:     make(map[uint16]*InputContext),
	}
}

// Serve processes exactly one incoming PDU, replying as the protocol
// requires, and then returns. A receive error, including the one
// reported when done is closed, is returned unchanged.
func (s *Server) Serve(done <-chan struct{}) error {
	m, err := s.Framer.Receive(s.order, done)
	if err != nil {
		return err
	}
	s.Metrics.MessageReceived(m.Opcode().String())
	return s.dispatch(m)
}

// sendError reports a request-level failure to the peer as an
// XIM_ERROR PDU rather than tearing down the whole connection — a bad
// id in one request doesn't desync the framer, so the serve loop
// keeps running (SPEC_FULL.md section 3's XIM_ERROR supplement).
func (s *Server) sendError(flag wire.ErrorFlag, imID, icID uint16, code wire.ErrorCode, detail string) error {
	return s.Framer.Send(s.order, wire.Error{
		ImID:   imID,
		IcID:   icID,
		Flag:   flag,
		Code:   code,
		Detail: wire.NewStr([]byte(detail)),
	})
}

func (s *Server) dispatch(m Message) error {
	switch msg := m.(type) {
	case *wire.Connect:
		return s.handleConnect(msg)
	case *wire.Open:
		return s.handleOpen(msg)
	case *wire.Close:
		return s.handleClose(msg)
	case *wire.CreateIC:
		return s.handleCreateIC(msg)
	case *wire.DestroyIC:
		return s.handleDestroyIC(msg)
	case *wire.SetICFocus:
		return s.handleSetFocus(msg, true)
	case *wire.UnsetICFocus:
		return s.handleSetFocus((*wire.SetICFocus)(msg), false)
	case *wire.ForwardEvent:
		return s.handleForwardEvent(msg)
	case *wire.Sync:
		return s.handleSync(msg)
	case *wire.SyncReply:
		return s.handleSyncReply(msg)
	case *wire.ResetIC:
		return s.handleResetIC(msg)
	case *wire.PreeditStartReply:
		return s.handlePreeditStartReply(msg)
	case *wire.GetIMValues:
		return s.handleGetIMValues(msg)
	case *wire.SetIMValues:
		return s.Framer.Send(s.order, wire.SetIMValuesReply{ImID: msg.ImID})
	case *wire.GetICValues:
		return s.handleGetICValues(msg)
	case *wire.SetICValues:
		return s.handleSetICValues(msg)
	case *wire.QueryExtension:
		// No extension subprotocols beyond discovery are implemented
		// (spec.md section 1 Non-goals), so the server always reports
		// an empty extension list.
		return s.Framer.Send(s.order, wire.QueryExtensionReply{ImID: msg.ImID})
	case *wire.EncodingNegotiation:
		return s.Framer.Send(s.order, wire.EncodingNegotiationReply{ImID: msg.ImID, Index: -1, Detail: -1})
	case *wire.TriggerNotify:
		return s.Framer.Send(s.order, wire.TriggerNotifyReply{ImID: msg.ImID, IcID: msg.IcID})
	case *wire.AuthRequired, *wire.AuthNext:
		// Authentication semantics are out of scope (spec.md section 1
		// Non-goals); any auth negotiation a peer opens is declined.
		return s.Framer.Send(s.order, wire.AuthNG{})
	case *wire.Disconnect:
		return s.Framer.Send(s.order, wire.DisconnectReply{})
	default:
		return nil
	}
}

func (s *Server) handleGetIMValues(msg *wire.GetIMValues) error {
	im, ok := s.ims[msg.ImID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid, msg.ImID, 0, wire.ErrorBadProtocol, "unknown input method id")
	}

	var attrs wire.AttributeList
	for _, id := range msg.IDs {
		if _, err := im.Catalog.NameFor(id); err != nil {
			continue
		}
		attrs.Attributes = append(attrs.Attributes, wire.Attribute{ID: id})
	}

	return s.Framer.Send(s.order, wire.GetIMValuesReply{ImID: msg.ImID, Attrs: attrs})
}

func (s *Server) handleGetICValues(msg *wire.GetICValues) error {
	ic, ok := s.ics[msg.IcID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid|wire.ErrorFlagIcIDValid, msg.ImID, msg.IcID, wire.ErrorBadProtocol, "unknown input context id")
	}

	var attrs wire.AttributeList
	for _, id := range msg.IDs {
		name, err := ic.IM.Catalog.NameFor(id)
		if err != nil {
			continue
		}

		var value []byte
		switch name {
		case AttrInputStyle:
			value = make([]byte, 4)
			s.order.PutUint32(value, uint32(ic.Style))
		case AttrClientWindow:
			value = make([]byte, 4)
			s.order.PutUint32(value, ic.Window)
		case AttrArea:
			var buf writeBufAlias
			ic.Area.WriteTo(&buf, s.order)
			value = buf.bytes
		case AttrSpotLocation:
			var buf writeBufAlias
			ic.SpotLocation.WriteTo(&buf, s.order)
			value = buf.bytes
		case AttrAreaNeeded:
			var buf writeBufAlias
			ic.AreaNeeded.WriteTo(&buf, s.order)
			value = buf.bytes
		default:
			continue
		}
		attrs.Attributes = append(attrs.Attributes, wire.Attribute{ID: id, Value: value})
	}

	return s.Framer.Send(s.order, wire.GetICValuesReply{ImID: msg.ImID, IcID: msg.IcID, Attrs: attrs})
}

func (s *Server) handleSetICValues(msg *wire.SetICValues) error {
	ic, ok := s.ics[msg.IcID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid|wire.ErrorFlagIcIDValid, msg.ImID, msg.IcID, wire.ErrorBadProtocol, "unknown input context id")
	}

	for _, a := range msg.Attrs.Attributes {
		name, err := ic.IM.Catalog.NameFor(a.ID)
		if err != nil {
			continue
		}
		switch name {
		case AttrInputStyle:
			ic.Style = wire.InputStyle(s.order.Uint32(a.Value))
		case AttrClientWindow:
			ic.Window = s.order.Uint32(a.Value)
		case AttrArea:
			ic.Area.ReadFrom(bytes.NewReader(a.Value), s.order)
		case AttrSpotLocation:
			ic.SpotLocation.ReadFrom(bytes.NewReader(a.Value), s.order)
		case AttrAreaNeeded:
			ic.AreaNeeded.ReadFrom(bytes.NewReader(a.Value), s.order)
		}
	}

	return s.Framer.Send(s.order, wire.SetICValuesReply{ImID: msg.ImID, IcID: msg.IcID})
}

func (s *Server) handleConnect(msg *wire.Connect) error {
	if _, err := orderFor(msg.ByteOrder); err != nil {
		return err
	}
	return s.Framer.Send(s.order, wire.ConnectReply{Major: 1, Minor: 0})
}

func (s *Server) handleOpen(msg *wire.Open) error {
	if len(s.ims) >= MaxOpenInputMethods {
		return &BusyError{Resource: "input methods", Limit: MaxOpenInputMethods}
	}

	imAttrs := DefaultIMAttributes()
	icAttrs := DefaultICAttributes()

	catalog, err := NewAttributeCatalog(append(append([]wire.CatalogEntry{}, imAttrs...), icAttrs...))
	if err != nil {
		return err
	}

	locale, err := ctextDecode(msg.LocaleName)
	if err != nil {
		return err
	}

	id := s.nextIM
	s.nextIM++
	s.ims[id] = &InputMethod{ID: id, Locale: locale, Catalog: catalog}
	s.Metrics.InputMethodOpened()

	return s.Framer.Send(s.order, wire.OpenReply{ImID: id, ImAttrs: imAttrs, ICAttrs: icAttrs})
}

func (s *Server) handleClose(msg *wire.Close) error {
	if _, ok := s.ims[msg.ImID]; ok {
		delete(s.ims, msg.ImID)
		s.Metrics.InputMethodClosed()
	}
	return s.Framer.Send(s.order, wire.CloseReply{ImID: msg.ImID})
}

// MaxOpenInputMethods and MaxOpenInputContexts bound server resource
// usage per connection (spec.md section 7 "Resource errors").
const (
	MaxOpenInputMethods  = 64
	MaxOpenInputContexts = 1024
)

func (s *Server) handleCreateIC(msg *wire.CreateIC) error {
	im, ok := s.ims[msg.ImID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid, msg.ImID, 0, wire.ErrorBadProtocol, "unknown input method id")
	}
	if len(s.ics) >= MaxOpenInputContexts {
		return &BusyError{Resource: "input contexts", Limit: MaxOpenInputContexts}
	}

	ic := &InputContext{ID: s.nextIC, IM: im}
	s.nextIC++

	for _, a := range msg.Attrs.Attributes {
		name, err := im.Catalog.NameFor(a.ID)
		if err != nil {
			continue
		}
		switch name {
		case AttrInputStyle:
			ic.Style = wire.InputStyle(s.order.Uint32(a.Value))
		case AttrClientWindow:
			ic.Window = s.order.Uint32(a.Value)
		}
	}

	s.ics[ic.ID] = ic
	s.Metrics.InputContextCreated()
	return s.Framer.Send(s.order, wire.CreateICReply{ImID: msg.ImID, IcID: ic.ID})
}

func (s *Server) handleDestroyIC(msg *wire.DestroyIC) error {
	if _, ok := s.ics[msg.IcID]; ok {
		delete(s.ics, msg.IcID)
		s.Metrics.InputContextDestroyed()
	}
	return s.Framer.Send(s.order, wire.DestroyICReply{ImID: msg.ImID, IcID: msg.IcID})
}

func (s *Server) handleSetFocus(msg *wire.SetICFocus, focused bool) error {
	if ic, ok := s.ics[msg.IcID]; ok {
		ic.Focused = focused
	}
	return nil
}

func (s *Server) handleResetIC(msg *wire.ResetIC) error {
	str, err := ctextEncode("")
	if err != nil {
		return err
	}
	return s.Framer.Send(s.order, wire.ResetICReply{ImID: msg.ImID, IcID: msg.IcID, String: str})
}

func (s *Server) handleForwardEvent(msg *wire.ForwardEvent) error {
	ic, ok := s.ics[msg.IcID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid|wire.ErrorFlagIcIDValid, msg.ImID, msg.IcID, wire.ErrorBadProtocol, "unknown input context id")
	}

	if ic.preeditReplyPending {
		if len(ic.queuedEvents) >= MaxQueuedKeyEvents {
			return &BusyError{Resource: "input context key queue", Limit: MaxQueuedKeyEvents}
		}
		ic.queuedEvents = append(ic.queuedEvents, queuedForwardEvent{
			imID: msg.ImID, icID: msg.IcID, flags: msg.Flags, serial: msg.Serial, event: msg.Event,
		})
		return nil
	}

	return s.dispatchForwardEvent(ic, msg.ImID, msg.IcID, msg.Flags, msg.Serial, msg.Event)
}

// dispatchForwardEvent runs the handler for one key event and issues
// its SYNC_REPLY if the event demanded one. It is shared by the live
// FORWARD_EVENT path and by drainQueuedEvents, which replays events
// held back while a PREEDIT_START_REPLY was outstanding.
func (s *Server) dispatchForwardEvent(ic *InputContext, imID, icID uint16, flags wire.ForwardEventFlag, serial uint32, event [32]byte) error {
	r := &serverResponder{server: s, ic: ic, imID: imID, icID: icID, serial: serial}
	if err := s.Handler.HandleKey(ic, serial, event, r); err != nil {
		return err
	}

	if flags&wire.FlagSynchronous != 0 {
		return s.Framer.Send(s.order, wire.SyncReply{ImID: imID, IcID: icID})
	}
	return nil
}

// handlePreeditStartReply clears an input context's pending-reply state
// and replays any key events queued while PREEDIT_START_REPLY was
// outstanding (spec.md section 4.6).
func (s *Server) handlePreeditStartReply(msg *wire.PreeditStartReply) error {
	ic, ok := s.ics[msg.IcID]
	if !ok {
		return s.sendError(wire.ErrorFlagImIDValid|wire.ErrorFlagIcIDValid, msg.ImID, msg.IcID, wire.ErrorBadProtocol, "unknown input context id")
	}
	ic.preeditReplyPending = false
	return s.drainQueuedEvents(ic)
}

func (s *Server) drainQueuedEvents(ic *InputContext) error {
	queued := ic.queuedEvents
	ic.queuedEvents = nil
	for _, q := range queued {
		if ic.preeditReplyPending {
			ic.queuedEvents = append(ic.queuedEvents, q)
			continue
		}
		if err := s.dispatchForwardEvent(ic, q.imID, q.icID, q.flags, q.serial, q.event); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleSync(msg *wire.Sync) error {
	s.pending = append(s.pending, pendingSync{imID: msg.ImID, icID: msg.IcID, sentAt: time.Now()})
	return s.Framer.Send(s.order, wire.SyncReply{ImID: msg.ImID, IcID: msg.IcID})
}

func (s *Server) handleSyncReply(msg *wire.SyncReply) error {
	if len(s.pending) == 0 {
		return s.sendError(wire.ErrorFlagImIDValid|wire.ErrorFlagIcIDValid, msg.ImID, msg.IcID, wire.ErrorBadProtocol, "no sync outstanding")
	}
	sent := s.pending[0].sentAt
	s.pending = s.pending[1:]
	s.Metrics.SyncReplyObserved(time.Since(sent).Seconds())
	return nil
}

// serverResponder implements Responder for one ForwardEvent call.
type serverResponder struct {
	server     *Server
	ic         *InputContext
	imID, icID uint16
	serial     uint32
}

func (r *serverResponder) Commit(text string) error {
	str, err := ctextEncode(text)
	if err != nil {
		return err
	}
	return r.server.Framer.Send(r.server.order, wire.Commit{
		ImID: r.imID, IcID: r.icID,
		Flags:  wire.CommitChars,
		String: str,
	})
}

// Forward passes the event back unfiltered, preserving the serial the
// client originally sent it with (spec.md section 8 scenario 5:
// passthrough forwarding must carry an "identical serial").
func (r *serverResponder) Forward(serial uint32, event [32]byte) error {
	return r.server.Framer.Send(r.server.order, wire.ForwardEvent{
		ImID: r.imID, IcID: r.icID,
		Flags:  wire.FlagRequestFilter,
		Serial: serial,
		Event:  event,
	})
}

// PreeditUpdate sends a PREEDIT_START the first time it is called for
// an input context, then a PREEDIT_DRAW replacing the whole buffer
// (spec.md section 4.6: "PREEDIT_START (if first), then PREEDIT_DRAW").
// PREEDIT_START is a synchronous reply handshake: further key events for
// this input context are held back until its PREEDIT_START_REPLY
// arrives (spec.md section 4.6/5).
func (r *serverResponder) PreeditUpdate(text string, caret int, feedback []wire.FeedbackMask) error {
	if !r.ic.preeditStarted {
		if err := r.server.Framer.Send(r.server.order, wire.PreeditStart{ImID: r.imID, IcID: r.icID}); err != nil {
			return err
		}
		r.ic.preeditStarted = true
		r.ic.preeditReplyPending = true
	}

	str, err := ctextEncode(text)
	if err != nil {
		return err
	}

	return r.server.Framer.Send(r.server.order, wire.PreeditDraw{
		ImID: r.imID, IcID: r.icID,
		CaretPosition: int32(caret),
		ChgLength:     -1,
		String:        str,
		Feedback:      wire.FeedbackArray{Feedbacks: feedback},
	})
}

// PreeditDone ends composition for the input context.
func (r *serverResponder) PreeditDone() error {
	r.ic.preeditStarted = false
	return r.server.Framer.Send(r.server.order, wire.PreeditDone{ImID: r.imID, IcID: r.icID})
}

// StatusUpdate mirrors PreeditUpdate for the status area (spec.md
// section 4.6: "status_update(string, feedback) -> analogous").
func (r *serverResponder) StatusUpdate(text string, feedback []wire.FeedbackMask) error {
	if !r.ic.statusStarted {
		if err := r.server.Framer.Send(r.server.order, wire.StatusStart{ImID: r.imID, IcID: r.icID}); err != nil {
			return err
		}
		r.ic.statusStarted = true
	}

	str, err := ctextEncode(text)
	if err != nil {
		return err
	}

	return r.server.Framer.Send(r.server.order, wire.StatusDraw{
		ImID: r.imID, IcID: r.icID,
		Type:   wire.StatusDrawText,
		String: str,
	})
}

// StatusDone hides the status area for the input context.
func (r *serverResponder) StatusDone() error {
	r.ic.statusStarted = false
	return r.server.Framer.Send(r.server.order, wire.StatusDone{ImID: r.imID, IcID: r.icID})
}
