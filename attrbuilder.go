package xim

import (
	"encoding/binary"

	"github.com/go-playground/validator/v10"

	"github.com/go-xim/xim/wire"
)

var attrValidate = validator.New()

// ICAttrValues is the set of input-context attributes an application
// sets at CreateIC time (spec.md section 4.5 "Per-IC lifecycle"). The
// validator tags catch the mistakes a hand-built AttributeList would
// otherwise only surface as a server-side protocol error: a style
// with neither a preedit nor status mode bit, or a window id of zero.
type ICAttrValues struct {
	InputStyle   wire.InputStyle `validate:"required"`
	ClientWindow x11Window       `validate:"required"`
	FocusWindow  x11Window
	SpotLocation *wire.XPoint
	Area         *wire.XRectangle
	PreeditAttrs *CallbackAttrs
	StatusAttrs  *CallbackAttrs
}

// CallbackAttrs sets the preedit/status area's rendering attributes,
// carried as a NestedList-typed attribute value (spec.md section 4.4:
// preeditAttributes and statusAttributes are themselves an
// AttributeList, not a scalar).
type CallbackAttrs struct {
	Foreground *uint32
	Background *uint32
	FontSet    string
	LineSpace  *uint32
}

// x11Window is a validator-friendly alias for uint32, the underlying
// type of x11.Window; "required" rejects the zero value, which is exactly the
// None window (spec.md's client window must be a real window).
type x11Window = uint32

// AttributeBuilder turns domain-level values into the wire
// AttributeList a CREATE_IC/SET_IC_VALUES message carries, resolving
// each field's name to a negotiated id through the session's
// AttributeCatalog.
type AttributeBuilder struct {
	catalog *AttributeCatalog
	order   binary.ByteOrder
	list    wire.AttributeList
}

// NewAttributeBuilder creates a builder bound to a session's catalog
// and byte order.
func NewAttributeBuilder(catalog *AttributeCatalog, order binary.ByteOrder) *AttributeBuilder {
	return &AttributeBuilder{catalog: catalog, order: order}
}

func (b *AttributeBuilder) set(name string, value []byte) error {
	id, err := b.catalog.IDFor(name)
	if err != nil {
		return err
	}
	b.list.Attributes = append(b.list.Attributes, wire.Attribute{ID: id, Value: value})
	return nil
}

// SetCARD32 adds a CARD32-typed attribute by name.
func (b *AttributeBuilder) SetCARD32(name string, v uint32) error {
	buf := make([]byte, 4)
	b.order.PutUint32(buf, v)
	return b.set(name, buf)
}

// SetWindow adds a Window-typed attribute by name.
func (b *AttributeBuilder) SetWindow(name string, w uint32) error {
	return b.SetCARD32(name, w)
}

// SetXPoint adds an XPoint-typed attribute by name.
func (b *AttributeBuilder) SetXPoint(name string, p wire.XPoint) error {
	var buf writeBufAlias
	p.WriteTo(&buf, b.order)
	return b.set(name, buf.bytes)
}

// SetXRectangle adds an XRectangle-typed attribute by name.
func (b *AttributeBuilder) SetXRectangle(name string, r wire.XRectangle) error {
	var buf writeBufAlias
	r.WriteTo(&buf, b.order)
	return b.set(name, buf.bytes)
}

// writeBufAlias is a minimal io.Writer accumulator, mirroring wire's
// unexported writeBuf since attribute values here are built outside
// the wire package.
type writeBufAlias struct{ bytes []byte }

func (w *writeBufAlias) Write(p []byte) (int, error) {
	w.bytes = append(w.bytes, p...)
	return len(p), nil
}

// buildNested renders a CallbackAttrs as a nested AttributeList, the
// wire shape required for a NestedList-typed attribute value (spec.md
// section 4.4).
func (b *AttributeBuilder) buildNested(v CallbackAttrs) ([]byte, error) {
	nested := NewAttributeBuilder(b.catalog, b.order)

	if v.Foreground != nil {
		if err := nested.SetCARD32(AttrForeground, *v.Foreground); err != nil {
			return nil, err
		}
	}
	if v.Background != nil {
		if err := nested.SetCARD32(AttrBackground, *v.Background); err != nil {
			return nil, err
		}
	}
	if v.FontSet != "" {
		id, err := b.catalog.IDFor(AttrFontSet)
		if err != nil {
			return nil, err
		}
		nested.list.Attributes = append(nested.list.Attributes, wire.Attribute{ID: id, Value: []byte(v.FontSet)})
	}
	if v.LineSpace != nil {
		if err := nested.SetCARD32(AttrLineSpace, *v.LineSpace); err != nil {
			return nil, err
		}
	}

	var buf writeBufAlias
	if _, err := nested.list.WriteTo(&buf, b.order); err != nil {
		return nil, err
	}
	return buf.bytes, nil
}

// SetPreeditAttributes adds the preeditAttributes NestedList attribute.
func (b *AttributeBuilder) SetPreeditAttributes(v CallbackAttrs) error {
	value, err := b.buildNested(v)
	if err != nil {
		return err
	}
	return b.set(AttrPreeditAttributes, value)
}

// SetStatusAttributes adds the statusAttributes NestedList attribute.
func (b *AttributeBuilder) SetStatusAttributes(v CallbackAttrs) error {
	value, err := b.buildNested(v)
	if err != nil {
		return err
	}
	return b.set(AttrStatusAttributes, value)
}

// Build validates and renders an ICAttrValues into a wire
// AttributeList ready for CREATE_IC or SET_IC_VALUES.
func (b *AttributeBuilder) Build(v ICAttrValues) (wire.AttributeList, error) {
	if err := attrValidate.Struct(v); err != nil {
		return wire.AttributeList{}, err
	}

	if err := b.SetCARD32(AttrInputStyle, uint32(v.InputStyle)); err != nil {
		return wire.AttributeList{}, err
	}
	if err := b.SetWindow(AttrClientWindow, v.ClientWindow); err != nil {
		return wire.AttributeList{}, err
	}
	if v.FocusWindow != 0 {
		if err := b.SetWindow(AttrFocusWindow, v.FocusWindow); err != nil {
			return wire.AttributeList{}, err
		}
	}
	if v.SpotLocation != nil {
		if err := b.SetXPoint(AttrSpotLocation, *v.SpotLocation); err != nil {
			return wire.AttributeList{}, err
		}
	}
	if v.Area != nil {
		if err := b.SetXRectangle(AttrArea, *v.Area); err != nil {
			return wire.AttributeList{}, err
		}
	}
	if v.PreeditAttrs != nil {
		if err := b.SetPreeditAttributes(*v.PreeditAttrs); err != nil {
			return wire.AttributeList{}, err
		}
	}
	if v.StatusAttrs != nil {
		if err := b.SetStatusAttributes(*v.StatusAttrs); err != nil {
			return wire.AttributeList{}, err
		}
	}

	return b.list, nil
}

// List returns the attributes accumulated so far without validation,
// for callers assembling a partial SET_IC_VALUES update.
func (b *AttributeBuilder) List() wire.AttributeList { return b.list }
