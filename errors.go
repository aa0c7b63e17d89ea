package xim

import "fmt"

// TransportError reports a failure in the underlying X11 transport:
// a ClientMessage that could not be sent, a property that could not
// be read back, or a selection that changed owner mid-transfer
// (spec.md section 7 "Transport-level errors").
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("xim: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a message that was well-formed on the wire
// but violated a protocol-level invariant: an opcode arriving out of
// the sequence the state machine expects, or an id referring to a
// session that was never opened.
type ProtocolError struct {
	State   string
	Opcode  string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("xim: protocol error in state %s on %s: %s", e.State, e.Opcode, e.Reason)
}

// UnknownAttributeError reports a reference to an attribute id or
// name the catalog has no entry for.
type UnknownAttributeError struct {
	ID   uint16
	Name string
}

func (e *UnknownAttributeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("xim: unknown attribute %q", e.Name)
	}
	return fmt.Sprintf("xim: unknown attribute id %d", e.ID)
}

// EncodingError reports a failure to render a string into the
// negotiated wire encoding (COMPOUND_TEXT), at the given byte offset.
type EncodingError struct {
	Offset int
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("xim: encoding error at offset %d: %v", e.Offset, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError reports a failure to parse a wire-encoded
// (COMPOUND_TEXT) string at the given byte offset.
type DecodingError struct {
	Offset int
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("xim: decoding error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// BusyError reports that a server-side resource limit was hit: too
// many concurrently open input methods or input contexts, or too many
// key events queued on one input context while a reply is pending.
type BusyError struct {
	Resource string
	Limit    int
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("xim: %s limit of %d reached", e.Resource, e.Limit)
}
