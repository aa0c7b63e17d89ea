package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardEventRoundTrip(t *testing.T) {
	f := ForwardEvent{
		ImID:   1,
		IcID:   2,
		Flags:  FlagSynchronous | FlagRequestFilter,
		Serial: 42,
	}
	copy(f.Event[:], "keydown-payload")

	var buf bytes.Buffer
	n, err := f.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got ForwardEvent
	nn, err := got.Decode(&buf, binary.BigEndian, Header{Major: OpForwardEvent, Length: uint16((n + 3) / 4)})
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, f, got)
}

func TestCommitWithSynchronousFlagRoundTrip(t *testing.T) {
	c := Commit{
		ImID:   1,
		IcID:   2,
		Flags:  CommitSynchronous | CommitChars,
		String: NewStr([]byte("hello")),
	}

	var buf bytes.Buffer
	n, err := c.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got Commit
	h := Header{Major: OpCommit, Length: uint16((n + 3) / 4)}
	nn, err := got.Decode(&buf, binary.BigEndian, h)
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, c.Flags, got.Flags)
	assert.Equal(t, c.String.String(), got.String.String())
	assert.NotZero(t, got.Flags&CommitSynchronous, "SYNCHRONOUS flag must survive the round trip")
}

func TestCommitKeysymOnlyRoundTrip(t *testing.T) {
	c := Commit{ImID: 1, IcID: 2, Flags: CommitKeysym, Keysym: 0x61}

	var buf bytes.Buffer
	n, err := c.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got Commit
	nn, err := got.Decode(&buf, binary.BigEndian, Header{Major: OpCommit, Length: uint16((n + 3) / 4)})
	require.NoError(t, err)
	assert.Equal(t, n, nn)
	assert.Equal(t, c.Keysym, got.Keysym)
	assert.Zero(t, got.String.Bytes)
}

func TestSyncRoundTrip(t *testing.T) {
	s := Sync{ImID: 3, IcID: 7}

	var buf bytes.Buffer
	_, err := s.Encode(&buf, binary.BigEndian)
	require.NoError(t, err)

	var got Sync
	_, err = got.Decode(&buf, binary.BigEndian, Header{Major: OpSync})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
