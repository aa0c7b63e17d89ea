package xim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xim/xim/ctext"
	"github.com/go-xim/xim/wire"
	"github.com/go-xim/xim/ximtest"
)

// TestDispatchCommitWithSynchronousFlagSendsSyncReply is the literal
// commit scenario: a COMMIT carrying SYNCHRONOUS and a composed
// string invokes OnCommit and causes the client to emit SYNC_REPLY.
func TestDispatchCommitWithSynchronousFlagSendsSyncReply(t *testing.T) {
	peerConn, clientConn := ximtest.NewConnPair(NativeX11ByteOrder())
	peerWin, _ := peerConn.CreateWindow()
	clientWin, _ := clientConn.CreateWindow()

	peerFramer, err := NewFramer(peerConn, peerWin, clientWin)
	require.NoError(t, err)
	clientFramer, err := NewFramer(clientConn, clientWin, peerWin)
	require.NoError(t, err)

	c := NewClient(clientFramer)
	c.imID = 1
	ic := &ClientIC{ID: 1, ImID: 1}
	c.ics[ic.ID] = ic

	var committed string
	c.Callbacks.OnCommit = func(ic *ClientIC, text string) { committed = text }

	encoded, err := ctext.Encode("안")
	require.NoError(t, err)

	require.NoError(t, peerFramer.Send(NativeByteOrder(), wire.Commit{
		ImID: 1, IcID: 1,
		Flags:  wire.CommitSynchronous | wire.CommitChars,
		String: wire.NewStr(encoded),
	}))

	require.NoError(t, c.Dispatch(nil))
	assert.Equal(t, "안", committed)

	reply, err := peerFramer.Receive(NativeByteOrder(), nil)
	require.NoError(t, err)
	syncReply, ok := reply.(*wire.SyncReply)
	require.True(t, ok)
	assert.Equal(t, wire.SyncReply{ImID: 1, IcID: 1}, *syncReply)
}

func TestDispatchForwardEventSynchronousSendsSyncReply(t *testing.T) {
	peerConn, clientConn := ximtest.NewConnPair(NativeX11ByteOrder())
	peerWin, _ := peerConn.CreateWindow()
	clientWin, _ := clientConn.CreateWindow()

	peerFramer, err := NewFramer(peerConn, peerWin, clientWin)
	require.NoError(t, err)
	clientFramer, err := NewFramer(clientConn, clientWin, peerWin)
	require.NoError(t, err)

	c := NewClient(clientFramer)
	c.imID = 1
	c.ics[1] = &ClientIC{ID: 1, ImID: 1}

	var forwarded [32]byte
	c.Callbacks.OnForward = func(ic *ClientIC, event [32]byte) { forwarded = event }

	var event [32]byte
	copy(event[:], "A")
	require.NoError(t, peerFramer.Send(NativeByteOrder(), wire.ForwardEvent{
		ImID: 1, IcID: 1, Flags: wire.FlagSynchronous, Event: event,
	}))

	require.NoError(t, c.Dispatch(nil))
	assert.Equal(t, event, forwarded)

	reply, err := peerFramer.Receive(NativeByteOrder(), nil)
	require.NoError(t, err)
	_, ok := reply.(*wire.SyncReply)
	assert.True(t, ok)
}

// TestDispatchPreeditCaretInvokesCallbackAndRepliesWithPosition covers
// the PREEDIT_CARET/PREEDIT_CARET_REPLY pair: the callback's returned
// position is echoed back rather than the one the server sent.
func TestDispatchPreeditCaretInvokesCallbackAndRepliesWithPosition(t *testing.T) {
	peerConn, clientConn := ximtest.NewConnPair(NativeX11ByteOrder())
	peerWin, _ := peerConn.CreateWindow()
	clientWin, _ := clientConn.CreateWindow()

	peerFramer, err := NewFramer(peerConn, peerWin, clientWin)
	require.NoError(t, err)
	clientFramer, err := NewFramer(clientConn, clientWin, peerWin)
	require.NoError(t, err)

	c := NewClient(clientFramer)
	c.imID = 1
	ic := &ClientIC{ID: 1, ImID: 1}
	c.ics[ic.ID] = ic

	var seen wire.PreeditCaret
	c.Callbacks.OnPreeditCaret = func(ic *ClientIC, caret wire.PreeditCaret) int32 {
		seen = caret
		return 7
	}

	require.NoError(t, peerFramer.Send(NativeByteOrder(), wire.PreeditCaret{
		ImID: 1, IcID: 1, Position: 3, Direction: 1,
	}))

	require.NoError(t, c.Dispatch(nil))
	assert.Equal(t, int32(3), seen.Position)

	reply, err := peerFramer.Receive(NativeByteOrder(), nil)
	require.NoError(t, err)
	caretReply, ok := reply.(*wire.PreeditCaretReply)
	require.True(t, ok)
	assert.Equal(t, wire.PreeditCaretReply{ImID: 1, IcID: 1, Position: 7}, *caretReply)
}

// TestDispatchReportsServerErrorForUnknownInputContext covers the
// server's recoverable-error path: a GET_IC_VALUES against an id the
// server never created comes back as an XIM_ERROR rather than killing
// the connection.
func TestDispatchReportsServerErrorForUnknownInputContext(t *testing.T) {
	clientConn, serverConn := ximtest.NewConnPair(NativeX11ByteOrder())
	clientWin, _ := clientConn.CreateWindow()
	serverWin, _ := serverConn.CreateWindow()

	clientFramer, err := NewFramer(clientConn, clientWin, serverWin)
	require.NoError(t, err)
	serverFramer, err := NewFramer(serverConn, serverWin, clientWin)
	require.NoError(t, err)

	srv := NewServer(serverFramer, NativeByteOrder(), DiscardKeyHandler)

	require.NoError(t, clientFramer.Send(NativeByteOrder(), wire.GetICValues{ImID: 1, IcID: 99}))
	require.NoError(t, srv.Serve(nil))

	var gotError *wire.Error
	c := NewClient(clientFramer)
	c.Callbacks.OnError = func(msg *wire.Error) { gotError = msg }
	require.NoError(t, c.Dispatch(nil))

	require.NotNil(t, gotError)
	assert.Equal(t, wire.ErrorBadProtocol, gotError.Code)
	assert.NotZero(t, gotError.Flag&wire.ErrorFlagIcIDValid)
	assert.Equal(t, uint16(99), gotError.IcID)
}

// TestClientServerFullHandshake drives a real Client against a real
// Server over an in-memory transport, covering CONNECT/OPEN/CREATE_IC
// end to end.
func TestClientServerFullHandshake(t *testing.T) {
	clientConn, serverConn := ximtest.NewConnPair(NativeX11ByteOrder())
	clientWin, _ := clientConn.CreateWindow()
	serverWin, _ := serverConn.CreateWindow()

	clientFramer, err := NewFramer(clientConn, clientWin, serverWin)
	require.NoError(t, err)
	serverFramer, err := NewFramer(serverConn, serverWin, clientWin)
	require.NoError(t, err)

	srv := NewServer(serverFramer, NativeByteOrder(), DiscardKeyHandler)
	done := make(chan struct{})
	serveErrs := make(chan error, 8)
	go func() {
		for i := 0; i < 4; i++ {
			if err := srv.Serve(done); err != nil {
				serveErrs <- err
				return
			}
		}
	}()
	defer close(done)

	c := NewClient(clientFramer)
	require.NoError(t, c.Connect())
	require.NoError(t, c.Open("en_US"))

	ic, err := c.CreateIC(ICAttrValues{
		InputStyle:   wire.StylePreeditNothing | wire.StyleStatusNothing,
		ClientWindow: uint32(clientWin),
	})
	require.NoError(t, err)
	assert.NotZero(t, ic.ID)

	select {
	case err := <-serveErrs:
		t.Fatalf("server error: %v", err)
	default:
	}
}
