package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// ErrorFlag marks which of ImID/IcID are meaningful in an Error
// message; an id field whose flag bit is clear carries no information
// about which session the error applies to.
type ErrorFlag uint16

const (
	ErrorFlagImIDValid ErrorFlag = 1 << 0
	ErrorFlagIcIDValid ErrorFlag = 1 << 1
)

// ErrorCode enumerates the wire-level error conditions a peer can
// report (SPEC_FULL.md section 3, supplementing spec.md section 6's
// non-exhaustive message list with the XIM_ERROR PDU itself).
type ErrorCode uint16

const (
	ErrorBadAlloc       ErrorCode = 1
	ErrorBadStyle       ErrorCode = 2
	ErrorBadClientWindow ErrorCode = 3
	ErrorBadFocusWindow ErrorCode = 4
	ErrorBadArea        ErrorCode = 5
	ErrorBadSpotLocation ErrorCode = 6
	ErrorBadColormap    ErrorCode = 7
	ErrorBadAtom        ErrorCode = 8
	ErrorBadPixel       ErrorCode = 9
	ErrorBadPixmap      ErrorCode = 10
	ErrorBadName        ErrorCode = 11
	ErrorBadCursor      ErrorCode = 12
	ErrorBadProtocol    ErrorCode = 13
	ErrorBadForeground  ErrorCode = 14
	ErrorBadBackground  ErrorCode = 15
	ErrorLocaleNotSupported ErrorCode = 16
)

// Error reports a protocol-level failure tied (where known) to a
// specific input method and input context.
type Error struct {
	ImID, IcID uint16
	Flag       ErrorFlag
	Code       ErrorCode
	Detail     Str
}

func (Error) Opcode() Opcode { return OpError }

func (e Error) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := wirecodec.WriteTo(w, order, e.ImID, e.IcID, uint16(e.Flag), uint16(e.Code), uint16(0))
	if err != nil {
		return n, err
	}
	nn, err := e.Detail.WriteTo(w, order)
	return n + nn, err
}

func (e *Error) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	var flag, code, pad uint16
	n, err := wirecodec.ReadFrom(r, order, &e.ImID, &e.IcID, &flag, &code, &pad)
	if err != nil {
		return n, err
	}
	e.Flag = ErrorFlag(flag)
	e.Code = ErrorCode(code)

	nn, err := e.Detail.ReadFrom(r, order, OpError, "detail", h.BodyLen()-int(n))
	return n + nn, err
}
