package xim

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/wire"
)

// TestEncodeMessagePadsBodyToFourBytes covers the universal padding
// invariant: OPEN's body is a single counted string with nothing
// ahead of it to absorb its own length prefix, so the field-level
// padding alone leaves the body short of a 4-byte multiple. The
// message encoder must close that gap itself.
func TestEncodeMessagePadsBodyToFourBytes(t *testing.T) {
	var buf bytes.Buffer
	n, err := EncodeMessage(&buf, binary.BigEndian, wire.Open{LocaleName: wire.NewStr([]byte("en_US"))})
	require.NoError(t, err)

	assert.Zero(t, (buf.Len()-wire.HeaderLen)%4, "PDU body must be a multiple of 4 bytes")
	assert.Equal(t, int64(buf.Len()), n)

	var h wire.Header
	_, err = h.ReadFrom(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, buf.Len()-wire.HeaderLen, h.BodyLen())
}

func TestEncodeDecodeMessageOpenRoundTrip(t *testing.T) {
	open := wire.Open{LocaleName: wire.NewStr([]byte("en_US"))}

	var buf bytes.Buffer
	_, err := EncodeMessage(&buf, binary.BigEndian, open)
	require.NoError(t, err)

	got, _, err := DecodeMessage(&buf, binary.BigEndian)
	require.NoError(t, err)

	gotOpen, ok := got.(*wire.Open)
	require.True(t, ok)
	assert.Equal(t, "en_US", gotOpen.LocaleName.String())
}

func TestDecodeMessageRejectsUnknownOpcode(t *testing.T) {
	var buf bytes.Buffer
	h := wire.Header{Major: wire.Opcode(250), Length: 0}
	_, err := h.WriteTo(&buf, binary.BigEndian)
	require.NoError(t, err)

	_, _, err = DecodeMessage(&buf, binary.BigEndian)
	require.Error(t, err)

	var malformed *wire.MalformedMessage
	require.ErrorAs(t, err, &malformed)
}
