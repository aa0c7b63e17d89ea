package xim

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"github.com/go-xim/xim/x11"
)

// NativeByteOrder returns the byte order of the machine this process
// is running on. Non-native byte order negotiation is out of scope
// (spec.md section 1 Non-goals): a CONNECT that advertises any other
// order is rejected rather than accommodated.
func NativeByteOrder() binary.ByteOrder {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// NativeX11ByteOrder returns the wire byte-order tag for the CONNECT
// handshake that corresponds to NativeByteOrder.
func NativeX11ByteOrder() x11.ByteOrder {
	if NativeByteOrder() == binary.LittleEndian {
		return x11.LittleEndian
	}
	return x11.BigEndian
}

// orderFor resolves a peer-advertised byte-order tag to the
// binary.ByteOrder to decode with, rejecting anything other than the
// running machine's own order (spec.md section 7: byte-order
// disagreement is a TransportError, not a protocol-level one).
func orderFor(tag x11.ByteOrder) (binary.ByteOrder, error) {
	if tag != NativeX11ByteOrder() {
		return nil, &TransportError{
			Op:  "connect-byte-order",
			Err: errors.New("peer advertised non-native byte order, which this implementation does not negotiate"),
		}
	}
	return NativeByteOrder(), nil
}
