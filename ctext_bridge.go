package xim

import (
	"errors"

	"github.com/go-xim/xim/ctext"
	"github.com/go-xim/xim/wire"
)

// ctextEncode renders s as COMPOUND_TEXT and wraps it as a wire.Str,
// the representation every textual PDU field (locale names, commit
// and preedit/status strings) actually carries on the wire (spec.md
// section 4.1 "CTEXT codec").
func ctextEncode(s string) (wire.Str, error) {
	b, err := ctext.Encode(s)
	if err != nil {
		var ee *ctext.EncodingError
		if errors.As(err, &ee) {
			return wire.Str{}, &EncodingError{Offset: ee.Offset, Err: err}
		}
		return wire.Str{}, &EncodingError{Err: err}
	}
	return wire.NewStr(b), nil
}

// ctextDecode parses a wire.Str's bytes as COMPOUND_TEXT back into a
// Go string.
func ctextDecode(s wire.Str) (string, error) {
	text, err := ctext.Decode(s.Bytes)
	if err != nil {
		var de *ctext.DecodingError
		if errors.As(err, &de) {
			return "", &DecodingError{Offset: de.Offset, Err: err}
		}
		return "", &DecodingError{Err: err}
	}
	return text, nil
}
