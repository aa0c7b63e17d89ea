package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateICRoundTrip(t *testing.T) {
	c := CreateIC{
		ImID: 1,
		Attrs: AttributeList{Attributes: []Attribute{
			{ID: 3, Value: []byte{0, 0, 0, 1}},
		}},
	}

	var buf bytes.Buffer
	n, err := c.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got CreateIC
	nn, err := got.Decode(&buf, binary.BigEndian, Header{Major: OpCreateIC, Length: uint16((n + 3) / 4)})
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, c, got)
}

func TestGetICValuesRoundTrip(t *testing.T) {
	g := GetICValues{ImID: 1, IcID: 2, IDs: []uint16{5, 6, 7}}

	var buf bytes.Buffer
	n, err := g.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got GetICValues
	nn, err := got.Decode(&buf, binary.BigEndian, Header{Major: OpGetICValues, Length: uint16((n + 3) / 4)})
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, g, got)
}

func TestResetICReplyRoundTrip(t *testing.T) {
	r := ResetICReply{ImID: 1, IcID: 2, String: NewStr([]byte("composed"))}

	var buf bytes.Buffer
	n, err := r.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got ResetICReply
	h := Header{Major: OpResetICReply, Length: uint16((n + 3) / 4)}
	nn, err := got.Decode(&buf, binary.BigEndian, h)
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, r.ImID, got.ImID)
	assert.Equal(t, r.IcID, got.IcID)
	assert.Equal(t, r.String.String(), got.String.String())
}

func TestDestroyICRoundTrip(t *testing.T) {
	d := DestroyIC{ImID: 4, IcID: 9}

	var buf bytes.Buffer
	n, err := d.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	var got DestroyIC
	_, err = got.Decode(&buf, binary.BigEndian, Header{Major: OpDestroyIC})
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
