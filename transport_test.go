package xim

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/wire"
	"github.com/go-xim/xim/ximtest"
)

func TestFramerSendsShortPDUInline(t *testing.T) {
	clientConn, serverConn := ximtest.NewConnPair(NativeX11ByteOrder())
	cw, _ := clientConn.CreateWindow()
	sw, _ := serverConn.CreateWindow()

	sender, err := NewFramer(clientConn, cw, sw)
	require.NoError(t, err)
	receiver, err := NewFramer(serverConn, sw, cw)
	require.NoError(t, err)

	// Sync's body is well under the inline threshold.
	require.NoError(t, sender.Send(binary.BigEndian, wire.Sync{ImID: 1, IcID: 2}))

	got, err := receiver.Receive(binary.BigEndian, nil)
	require.NoError(t, err)
	assert.Equal(t, &wire.Sync{ImID: 1, IcID: 2}, got)
}

func TestFramerSendsLongPDUViaProperty(t *testing.T) {
	clientConn, serverConn := ximtest.NewConnPair(NativeX11ByteOrder())
	cw, _ := clientConn.CreateWindow()
	sw, _ := serverConn.CreateWindow()

	sender, err := NewFramer(clientConn, cw, sw)
	require.NoError(t, err)
	receiver, err := NewFramer(serverConn, sw, cw)
	require.NoError(t, err)

	// A long locale name pushes OPEN's encoded size past the 20-byte
	// inline threshold, forcing the property transport path.
	open := wire.Open{LocaleName: wire.NewStr([]byte("a-very-long-locale-name-indeed"))}
	require.NoError(t, sender.Send(binary.BigEndian, open))

	got, err := receiver.Receive(binary.BigEndian, nil)
	require.NoError(t, err)
	gotOpen, ok := got.(*wire.Open)
	require.True(t, ok)
	assert.Equal(t, open.LocaleName.String(), gotOpen.LocaleName.String())
}
