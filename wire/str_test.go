package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStrRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(t, "bytes")
		s := NewStr(b)

		var buf bytes.Buffer
		n, err := s.WriteTo(&buf, binary.BigEndian)
		require.NoError(t, err)
		assert.Equal(t, int64(buf.Len()), n)
		// the 2-byte length prefix plus data is padded relative to the
		// data's own length, not the prefix's, so it's the trailing
		// (data+padding) span that lands on a 4-byte boundary.
		assert.Zero(t, (buf.Len()-2)%4, "string payload plus padding must be 4-byte aligned")

		var got Str
		nn, err := got.ReadFrom(&buf, binary.BigEndian, OpOpen, "test-field", 0)
		require.NoError(t, err)
		assert.Equal(t, n, nn)
		assert.Equal(t, b, got.Bytes)
		assert.Equal(t, string(b), got.String())
	})
}

func TestStrRejectsOverLongDeclaration(t *testing.T) {
	var buf bytes.Buffer
	NewStr([]byte("hello")).WriteTo(&buf, binary.BigEndian)

	var got Str
	_, err := got.ReadFrom(&buf, binary.BigEndian, OpOpen, "locale-name", 2)
	require.Error(t, err)

	var malformed *MalformedMessage
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "locale-name", malformed.Field)
}
