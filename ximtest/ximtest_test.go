package ximtest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/x11"
)

func TestNewConnPairRoutesMessagesToPeer(t *testing.T) {
	client, server := NewConnPair(x11.BigEndian)

	msg := x11.ClientMessage{Type: 7, Format: x11.Format32}
	require.NoError(t, client.SendClientMessage(0, msg, false))

	ev, err := server.NextEvent(nil)
	require.NoError(t, err)
	cme, ok := ev.(x11.ClientMessageEvent)
	require.True(t, ok)
	assert.Equal(t, msg, cme.ClientMessage)
}

func TestPropertySetGetDelete(t *testing.T) {
	client, _ := NewConnPair(x11.BigEndian)
	w, err := client.CreateWindow()
	require.NoError(t, err)

	atom, err := client.InternAtom("_TEST_PROP", false)
	require.NoError(t, err)

	require.NoError(t, client.SetProperty(w, atom, 1, x11.Format8, []byte("hello")))

	typ, data, err := client.GetProperty(w, atom, false)
	require.NoError(t, err)
	assert.Equal(t, x11.Atom(1), typ)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, client.DeleteProperty(w, atom))
	_, data, err = client.GetProperty(w, atom, false)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestInternAtomOnlyIfExists(t *testing.T) {
	client, _ := NewConnPair(x11.BigEndian)

	a, err := client.InternAtom("_NEVER_INTERNED", true)
	require.NoError(t, err)
	assert.Equal(t, x11.Atom(x11.None), a)

	created, err := client.InternAtom("_NEVER_INTERNED", false)
	require.NoError(t, err)
	assert.NotEqual(t, x11.Atom(x11.None), created)

	found, err := client.InternAtom("_NEVER_INTERNED", true)
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestSelectionOwnership(t *testing.T) {
	client, _ := NewConnPair(x11.BigEndian)

	sel, err := client.InternAtom("_SELECTION", false)
	require.NoError(t, err)

	owner, err := client.SelectionOwner(sel)
	require.NoError(t, err)
	assert.Equal(t, x11.Window(0), owner)

	w, err := client.CreateWindow()
	require.NoError(t, err)
	require.NoError(t, client.SetSelectionOwner(sel, w))

	owner, err = client.SelectionOwner(sel)
	require.NoError(t, err)
	assert.Equal(t, w, owner)
}

func TestUniquePropertyNameIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := UniquePropertyName()
		assert.False(t, seen[name])
		seen[name] = true
	}
}

// TestConcurrentLongPDUTransfersDoNotCollide exercises
// UniquePropertyName for its intended purpose: several goroutines each
// staging a long PDU payload on the same shared window, the way
// multiple Framer.Send calls racing on one connection would, must not
// see each other's data even though they share one property namespace.
func TestConcurrentLongPDUTransfersDoNotCollide(t *testing.T) {
	client, _ := NewConnPair(x11.BigEndian)
	w, err := client.CreateWindow()
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()

			name := UniquePropertyName()
			atom, err := client.InternAtom(name, false)
			assert.NoError(t, err)

			payload := []byte{byte(i), byte(i + 1), byte(i + 2)}
			assert.NoError(t, client.SetProperty(w, atom, 1, x11.Format8, payload))

			_, data, err := client.GetProperty(w, atom, false)
			assert.NoError(t, err)
			assert.Equal(t, payload, data)
		}(i)
	}
	wg.Wait()
}
