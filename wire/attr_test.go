package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAttributeListRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(t, "n")
		attrs := make([]Attribute, n)
		for i := range attrs {
			attrs[i] = Attribute{
				ID:    rapid.Uint16().Draw(t, "id"),
				Value: rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "value"),
			}
		}
		l := AttributeList{Attributes: attrs}

		var buf bytes.Buffer
		n64, err := l.WriteTo(&buf, binary.BigEndian)
		require.NoError(t, err)
		assert.Zero(t, buf.Len()%4, "attribute list wire length must be 4-byte aligned")
		assert.Equal(t, int64(buf.Len()), n64)

		var got AttributeList
		_, err = got.ReadFrom(&buf, binary.BigEndian, OpSetICValues)
		require.NoError(t, err)

		if len(attrs) == 0 {
			assert.Empty(t, got.Attributes)
		} else {
			assert.Equal(t, l.Attributes, got.Attributes)
		}
	})
}

func TestAttributeListRejectsTruncatedHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 3, 1, 2, 3}) // byteLen=3 (4 with padding), but only 3 bytes follow: short of one id/len header

	var got AttributeList
	_, err := got.ReadFrom(&buf, binary.BigEndian, OpGetICValues)
	require.Error(t, err)

	var malformed *MalformedMessage
	require.ErrorAs(t, err, &malformed)
}

func TestXRectangleRoundTrip(t *testing.T) {
	r := XRectangle{X: -5, Y: 10, Width: 200, Height: 40}

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got XRectangle
	_, err = got.ReadFrom(&buf, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestXIMStylesRoundTrip(t *testing.T) {
	s := XIMStyles{Styles: []InputStyle{
		StylePreeditNothing | StyleStatusNothing,
		StylePreeditCallbacks | StyleStatusCallbacks,
	}}

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got XIMStyles
	_, err = got.ReadFrom(&buf, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFeedbackArrayRoundTrip(t *testing.T) {
	f := FeedbackArray{Feedbacks: []FeedbackMask{FeedbackReverse, FeedbackUnderline | FeedbackHighlight}}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got FeedbackArray
	_, err = got.ReadFrom(&buf, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}
