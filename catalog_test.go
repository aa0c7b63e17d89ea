package xim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/wire"
)

// TestCatalogBuilderAssignsDenseIDsFromZero covers spec.md section 8's
// testable property directly: the ids a catalogBuilder hands out must
// form exactly {0..N-1} with no gaps and no duplicates.
func TestCatalogBuilderAssignsDenseIDsFromZero(t *testing.T) {
	b := newCatalogBuilder()
	for _, a := range icAttributeDefs {
		b.register(a.name, a.typ)
	}
	entries := b.build()
	require.NotEmpty(t, entries)

	seen := make(map[uint16]bool, len(entries))
	for _, e := range entries {
		seen[e.ID] = true
	}

	for i := 0; i < len(entries); i++ {
		assert.True(t, seen[uint16(i)], "missing attribute id %d", i)
	}
	assert.Len(t, seen, len(entries), "ids must be unique")
}

// TestDefaultCatalogsShareOneDenseIDSpace pins the actual bug this
// module must avoid: OPEN_REPLY hands the peer two attribute lists
// (ImAttrs, ICAttrs) that a catalog builds from in one shot (spec.md
// section 4.4), so their ids must be dense and unique across the
// union of both lists, not merely within each list on its own —
// exactly what server.go's handleOpen and client.go's Open do with
// the values this function returns.
func TestDefaultCatalogsShareOneDenseIDSpace(t *testing.T) {
	im := DefaultIMAttributes()
	ic := DefaultICAttributes()
	require.NotEmpty(t, im)
	require.NotEmpty(t, ic)

	combined := append(append([]wire.CatalogEntry{}, im...), ic...)
	catalog, err := NewAttributeCatalog(combined)
	require.NoError(t, err)
	assert.Equal(t, len(combined), catalog.Len())

	seen := make(map[uint16]bool, len(combined))
	for _, e := range combined {
		seen[e.ID] = true
	}
	for i := 0; i < len(combined); i++ {
		assert.True(t, seen[uint16(i)], "missing attribute id %d", i)
	}
	assert.Len(t, seen, len(combined), "ids must be unique across ImAttrs and ICAttrs")
}

// TestCatalogBuilderOrderIsDeterministic confirms the id assignment
// depends only on the registered attribute names, not on registration
// order, since client and server build their own catalogs
// independently from the same OPEN_REPLY payload.
func TestCatalogBuilderOrderIsDeterministic(t *testing.T) {
	a := newCatalogBuilder()
	a.register(AttrClientWindow, wire.AttrTypeWindow)
	a.register(AttrInputStyle, wire.AttrTypeCARD32)

	b := newCatalogBuilder()
	b.register(AttrInputStyle, wire.AttrTypeCARD32)
	b.register(AttrClientWindow, wire.AttrTypeWindow)

	assert.Equal(t, a.build(), b.build())
}

func TestNewAttributeCatalogRoundTripsNameAndID(t *testing.T) {
	c, err := NewAttributeCatalog(DefaultICAttributes())
	require.NoError(t, err)

	id, err := c.IDFor(AttrClientWindow)
	require.NoError(t, err)

	name, err := c.NameFor(id)
	require.NoError(t, err)
	assert.Equal(t, AttrClientWindow, name)

	typ, err := c.TypeOf(id)
	require.NoError(t, err)
	assert.Equal(t, wire.AttrTypeWindow, typ)

	assert.Equal(t, len(DefaultICAttributes()), c.Len())
}

func TestNewAttributeCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := NewAttributeCatalog([]wire.CatalogEntry{
		{ID: 0, Type: wire.AttrTypeCARD32, Name: wire.NewStr([]byte("a"))},
		{ID: 0, Type: wire.AttrTypeCARD32, Name: wire.NewStr([]byte("b"))},
	})
	require.Error(t, err)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestAttributeCatalogUnknownLookups(t *testing.T) {
	c, err := NewAttributeCatalog(DefaultICAttributes())
	require.NoError(t, err)

	_, err = c.IDFor("notAnAttribute")
	require.Error(t, err)

	_, err = c.NameFor(uint16(len(DefaultICAttributes()) + 100))
	require.Error(t, err)

	_, err = c.TypeOf(uint16(len(DefaultICAttributes()) + 100))
	require.Error(t, err)
}
