package wire

import "github.com/go-xim/xim/internal/wirecodec"

// pad4 is a zero-filled alignment slice that brings a variable-length
// field of the given length to a 4-byte boundary (spec.md section 4.2).
// The wire types write their padding through wirecodec.WritePadded and
// wirecodec.Pad4Bytes; nothing in this package uses pad4.
type pad4 []byte

func makePad4(length int) pad4 {
	return wirecodec.Pad4Bytes(length)
}
