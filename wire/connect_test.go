package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/x11"
)

// TestConnectLittleEndianEncoding pins the literal byte layout from
// the CONNECT scenario: a little-endian host advertising protocol
// version 1.0 with no auth names.
func TestConnectLittleEndianEncoding(t *testing.T) {
	c := Connect{ByteOrder: x11.LittleEndian, Major: 1, Minor: 0}

	var buf bytes.Buffer
	_, err := c.Encode(&buf, binary.LittleEndian)
	require.NoError(t, err)

	assert.Equal(t, []byte{'l', 0, 1, 0, 0, 0, 0, 0}, buf.Bytes())
}

func TestConnectRoundTrip(t *testing.T) {
	c := Connect{
		ByteOrder: x11.BigEndian,
		Major:     1,
		Minor:     0,
		AuthNames: []Str{NewStr([]byte("none"))},
	}

	var body bytes.Buffer
	n, err := c.Encode(&body, binary.BigEndian)
	require.NoError(t, err)

	var got Connect
	nn, err := got.Decode(&body, binary.BigEndian, Header{Major: OpConnect, Length: uint16((n + 3) / 4)})
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, c, got)
}

func TestDisconnectReplyEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	n, err := (Disconnect{}).Encode(&buf, binary.BigEndian)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, buf.Len())
}
