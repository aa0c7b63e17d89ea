package xim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/wire"
)

// TestSetPreeditAttributesBuildsNestedList covers spec.md section 4.4's
// NestedList type: preeditAttributes must itself decode as an
// AttributeList carrying the callback's own sub-attributes.
func TestSetPreeditAttributesBuildsNestedList(t *testing.T) {
	catalog, err := NewAttributeCatalog(DefaultICAttributes())
	require.NoError(t, err)
	order := NativeByteOrder()

	fg := uint32(0xff0000)
	b := NewAttributeBuilder(catalog, order)
	require.NoError(t, b.SetPreeditAttributes(CallbackAttrs{Foreground: &fg, FontSet: "fixed"}))

	list := b.List()
	require.Len(t, list.Attributes, 1)

	preeditID, err := catalog.IDFor(AttrPreeditAttributes)
	require.NoError(t, err)
	assert.Equal(t, preeditID, list.Attributes[0].ID)

	var nested wire.AttributeList
	_, err = nested.ReadFrom(bytes.NewReader(list.Attributes[0].Value), order, wire.OpSetICValues)
	require.NoError(t, err)
	require.Len(t, nested.Attributes, 2)

	fgID, err := catalog.IDFor(AttrForeground)
	require.NoError(t, err)
	fontID, err := catalog.IDFor(AttrFontSet)
	require.NoError(t, err)

	byID := make(map[uint16][]byte, len(nested.Attributes))
	for _, a := range nested.Attributes {
		byID[a.ID] = a.Value
	}

	require.Contains(t, byID, fgID)
	assert.Equal(t, fg, order.Uint32(byID[fgID]))

	require.Contains(t, byID, fontID)
	assert.Equal(t, "fixed", string(byID[fontID]))
}

// TestSetStatusAttributesBuildsNestedList mirrors the preedit case for
// statusAttributes, and confirms an empty CallbackAttrs still produces
// a (empty) well-formed nested list rather than an error.
func TestSetStatusAttributesBuildsNestedList(t *testing.T) {
	catalog, err := NewAttributeCatalog(DefaultICAttributes())
	require.NoError(t, err)
	order := NativeByteOrder()

	bg := uint32(0x00ff00)
	b := NewAttributeBuilder(catalog, order)
	require.NoError(t, b.SetStatusAttributes(CallbackAttrs{Background: &bg}))

	list := b.List()
	require.Len(t, list.Attributes, 1)

	statusID, err := catalog.IDFor(AttrStatusAttributes)
	require.NoError(t, err)
	assert.Equal(t, statusID, list.Attributes[0].ID)

	var nested wire.AttributeList
	_, err = nested.ReadFrom(bytes.NewReader(list.Attributes[0].Value), order, wire.OpSetICValues)
	require.NoError(t, err)
	require.Len(t, nested.Attributes, 1)

	bgID, err := catalog.IDFor(AttrBackground)
	require.NoError(t, err)
	assert.Equal(t, bgID, nested.Attributes[0].ID)
	assert.Equal(t, bg, order.Uint32(nested.Attributes[0].Value))
}

// TestBuildWiresPreeditAndStatusAttrsWhenSet confirms ICAttrValues.Build
// routes through SetPreeditAttributes/SetStatusAttributes, the gap the
// review flagged: a client using only the public Build API must be
// able to configure callback-style attributes at CREATE_IC time.
func TestBuildWiresPreeditAndStatusAttrsWhenSet(t *testing.T) {
	catalog, err := NewAttributeCatalog(DefaultICAttributes())
	require.NoError(t, err)
	order := NativeByteOrder()

	fg := uint32(1)
	b := NewAttributeBuilder(catalog, order)
	list, err := b.Build(ICAttrValues{
		InputStyle:   wire.StylePreeditCallbacks,
		ClientWindow: 1,
		PreeditAttrs: &CallbackAttrs{Foreground: &fg},
	})
	require.NoError(t, err)

	preeditID, err := catalog.IDFor(AttrPreeditAttributes)
	require.NoError(t, err)

	found := false
	for _, a := range list.Attributes {
		if a.ID == preeditID {
			found = true
		}
	}
	assert.True(t, found, "preeditAttributes must be present when ICAttrValues.PreeditAttrs is set")
}
