package ctext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestEncodeMixedASCIIAndWide pins the literal example: an ASCII
// character, a non-ASCII character, and another ASCII character wrap
// the non-ASCII run in the UTF-8 extension escapes rather than
// attempting a JIS X0208 designation.
func TestEncodeMixedASCIIAndWide(t *testing.T) {
	got, err := Encode("AあB")
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x41,
		0x1b, 0x25, 0x47,
		0xe3, 0x81, 0x82,
		0x1b, 0x25, 0x40,
		0x42,
	}, got)
}

func TestEncodeASCIIOnlyIsVerbatim(t *testing.T) {
	got, err := Encode("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestDecodeUTF8Extension(t *testing.T) {
	wire := []byte{0x41, 0x1b, 0x25, 0x47, 0xe3, 0x81, 0x82, 0x1b, 0x25, 0x40, 0x42}
	got, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, "AあB", got)
}

func TestDecodeRejectsUnterminatedExtension(t *testing.T) {
	wire := []byte{0x1b, 0x25, 0x47, 0x41}
	_, err := Decode(wire)
	require.Error(t, err)

	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestEncodeDecodeRoundTripASCIIAndExtension(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		var s string
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "wide") {
				s += string(rune(rapid.IntRange(0x3041, 0x30ff).Draw(t, "kana")))
			} else {
				s += string(rune(rapid.IntRange(0x20, 0x7e).Draw(t, "ascii")))
			}
		}

		encoded, err := Encode(s)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, s, decoded)
	})
}
