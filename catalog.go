package xim

import (
	"sort"
	"sync"

	"github.com/go-xim/xim/wire"
)

// catalogEntry is one attribute's catalog record: its negotiated id,
// wire type, and name.
type catalogEntry struct {
	id   uint16
	typ  wire.AttrType
	name string
}

// AttributeCatalog maps attribute names to the dense ids negotiated
// during OPEN_REPLY, and back (spec.md section 4.4 "Attribute
// catalog"). A catalog is built once per input method session and is
// immutable afterward; both client and server build their own view
// of the same catalog from the same OPEN_REPLY payload, so the two
// never need to agree out of band.
type AttributeCatalog struct {
	mu      sync.RWMutex
	byName  map[string]catalogEntry
	byID    map[uint16]catalogEntry
}

// NewAttributeCatalog builds a catalog from the (name, type, id)
// triples a server sent in an OPEN_REPLY (or, on the server side, the
// triples it is about to send).
func NewAttributeCatalog(entries []wire.CatalogEntry) (*AttributeCatalog, error) {
	c := &AttributeCatalog{
		byName: make(map[string]catalogEntry, len(entries)),
		byID:   make(map[uint16]catalogEntry, len(entries)),
	}

	for _, e := range entries {
		name := e.Name.String()
		ce := catalogEntry{id: e.ID, typ: e.Type, name: name}

		if _, dup := c.byID[e.ID]; dup {
			return nil, &ProtocolError{State: "catalog", Opcode: "OPEN_REPLY", Reason: "duplicate attribute id " + name}
		}

		c.byName[name] = ce
		c.byID[e.ID] = ce
	}

	return c, nil
}

// IDFor returns the id negotiated for the named attribute.
func (c *AttributeCatalog) IDFor(name string) (uint16, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byName[name]
	if !ok {
		return 0, &UnknownAttributeError{Name: name}
	}
	return e.id, nil
}

// NameFor returns the name registered for an attribute id.
func (c *AttributeCatalog) NameFor(id uint16) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return "", &UnknownAttributeError{ID: id}
	}
	return e.name, nil
}

// TypeOf returns the wire type registered for an attribute id.
func (c *AttributeCatalog) TypeOf(id uint16) (wire.AttrType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return 0, &UnknownAttributeError{ID: id}
	}
	return e.typ, nil
}

// Len reports how many attributes the catalog holds.
func (c *AttributeCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// catalogBuilder assembles a dense, gap-free id space for a fixed set
// of named attributes, the shape a server hands out in OPEN_REPLY
// (spec.md section 3: "Attribute ids are assigned densely from 0 per
// connection"; section 8's testable property requires the assigned
// ids to form {0..N-1} with no gaps).
type catalogBuilder struct {
	names []string
	types map[string]wire.AttrType
}

func newCatalogBuilder() *catalogBuilder {
	return &catalogBuilder{types: make(map[string]wire.AttrType)}
}

func (b *catalogBuilder) register(name string, typ wire.AttrType) {
	if _, ok := b.types[name]; !ok {
		b.names = append(b.names, name)
	}
	b.types[name] = typ
}

// build assigns dense ids in name-sorted order, so the same attribute
// set always yields the same id assignment regardless of
// registration order — a property the server-side tests rely on.
func (b *catalogBuilder) build() []wire.CatalogEntry {
	names := append([]string(nil), b.names...)
	sort.Strings(names)

	entries := make([]wire.CatalogEntry, len(names))
	for i, name := range names {
		entries[i] = wire.CatalogEntry{
			ID:   uint16(i),
			Type: b.types[name],
			Name: wire.NewStr([]byte(name)),
		}
	}
	return entries
}

// Standard attribute names defined by the protocol (spec.md section
// 4.4's worked example catalog, supplemented by the conventional XIM
// attribute set for styles, geometry, and hot keys).
const (
	AttrQueryInputStyle   = "queryInputStyle"
	AttrInputStyle        = "inputStyle"
	AttrClientWindow      = "clientWindow"
	AttrFocusWindow       = "focusWindow"
	AttrFilterEvents      = "filterEvents"
	AttrPreeditAttributes = "preeditAttributes"
	AttrStatusAttributes  = "statusAttributes"
	AttrSeparatorOfNestedList = "separatorofNestedList"
	AttrAreaNeeded        = "areaNeeded"
	AttrArea              = "area"
	AttrSpotLocation      = "spotLocation"
	AttrColormap          = "colorMap"
	AttrStdColormap       = "StdColormap"
	AttrForeground        = "foreground"
	AttrBackground        = "background"
	AttrBackgroundPixmap  = "backgroundPixmap"
	AttrFontSet           = "fontSet"
	AttrLineSpace         = "lineSpace"
	AttrCursor            = "cursor"
)

// attrDef pairs an attribute's name with its wire type, the unit the
// default catalog tables below are built from.
type attrDef struct {
	name string
	typ  wire.AttrType
}

var imAttributeDefs = []attrDef{
	{AttrQueryInputStyle, wire.AttrTypeNestedList},
}

var icAttributeDefs = []attrDef{
	{AttrInputStyle, wire.AttrTypeCARD32},
	{AttrClientWindow, wire.AttrTypeWindow},
	{AttrFocusWindow, wire.AttrTypeWindow},
	{AttrFilterEvents, wire.AttrTypeCARD32},
	{AttrPreeditAttributes, wire.AttrTypeNestedList},
	{AttrStatusAttributes, wire.AttrTypeNestedList},
	{AttrAreaNeeded, wire.AttrTypeXRectangle},
	{AttrArea, wire.AttrTypeXRectangle},
	{AttrSpotLocation, wire.AttrTypeXPoint},
	{AttrColormap, wire.AttrTypeCARD32},
	{AttrForeground, wire.AttrTypeCARD32},
	{AttrBackground, wire.AttrTypeCARD32},
	{AttrFontSet, wire.AttrTypeXFontSet},
	{AttrLineSpace, wire.AttrTypeCARD32},
	{AttrCursor, wire.AttrTypeWindow},
}

// buildDefaultCatalog assigns one dense id space across both the
// IM-level and IC-level attributes this implementation advertises.
// OPEN_REPLY carries them as two separate lists, but they share a
// single per-connection catalog (spec.md section 3: "Attribute ids
// are assigned densely from 0 per connection" — per connection, not
// per list), so registering them with two independent builders would
// hand out the same ids twice and make the combined catalog a peer
// builds from OPEN_REPLY reject itself as having duplicate ids.
func buildDefaultCatalog() (im, ic []wire.CatalogEntry) {
	b := newCatalogBuilder()
	for _, a := range imAttributeDefs {
		b.register(a.name, a.typ)
	}
	for _, a := range icAttributeDefs {
		b.register(a.name, a.typ)
	}

	isIM := make(map[string]bool, len(imAttributeDefs))
	for _, a := range imAttributeDefs {
		isIM[a.name] = true
	}

	for _, e := range b.build() {
		if isIM[e.Name.String()] {
			im = append(im, e)
		} else {
			ic = append(ic, e)
		}
	}
	return im, ic
}

// DefaultIMAttributes returns the input-method level attribute set
// this implementation advertises in OPEN_REPLY.
func DefaultIMAttributes() []wire.CatalogEntry {
	im, _ := buildDefaultCatalog()
	return im
}

// DefaultICAttributes returns the input-context level attribute set
// this implementation advertises in OPEN_REPLY.
func DefaultICAttributes() []wire.CatalogEntry {
	_, ic := buildDefaultCatalog()
	return ic
}
