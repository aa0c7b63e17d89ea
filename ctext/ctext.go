// Package ctext implements a COMPOUND_TEXT codec: the ISO-2022-based
// encoding XIM uses on the wire for preedit, status, and commit
// strings (spec.md section 4.1 "CTEXT codec"). The encoder emits ASCII
// runs verbatim and wraps every other run in the non-standard
// ESC % G / ESC % @ UTF-8 extension most COMPOUND_TEXT implementations
// also accept; it never emits a JIS X0208-1983 designation. The decoder
// hands bytes outside that extension to the ISO-2022-JP decoder.
package ctext

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

const (
	escUTF8Start = "\x1b%G"
	escUTF8End   = "\x1b%@"
)

// EncodingError reports a rune that could not be placed in any
// supported designation, at its byte offset in the input string.
type EncodingError struct {
	Offset int
	Rune   rune
}

func (e *EncodingError) Error() string {
	return "ctext: cannot encode rune at offset " + itoa(e.Offset)
}

// DecodingError reports malformed ISO-2022 framing at a byte offset
// in the wire-encoded input.
type DecodingError struct {
	Offset int
	Reason string
}

func (e *DecodingError) Error() string {
	return "ctext: " + e.Reason + " at offset " + itoa(e.Offset)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// run is a maximal span of the input classified as either plain ASCII
// or requiring the UTF-8 fallback. Encode never emits the JIS
// X0208-1983 designation itself (spec.md section 9's open question
// declines to guess which non-ASCII designations real peers expect,
// so only the ASCII/UTF-8 pair this module is sure of gets emitted);
// Decode still understands JIS-designated bytes a peer sends, via
// ISO2022JP's decoder.
type run struct {
	text string
	utf8 bool
}

func splitRuns(s string) []run {
	var runs []run
	var buf bytes.Buffer
	bufIsUTF8 := false
	started := false

	flush := func() {
		if buf.Len() > 0 {
			runs = append(runs, run{text: buf.String(), utf8: bufIsUTF8})
			buf.Reset()
		}
	}

	for _, r := range s {
		isUTF8 := r > unicode.MaxASCII
		if started && isUTF8 != bufIsUTF8 {
			flush()
		}
		bufIsUTF8 = isUTF8
		started = true
		buf.WriteRune(r)
	}
	flush()

	return runs
}

// Encode renders s as a COMPOUND_TEXT byte string.
func Encode(s string) ([]byte, error) {
	var out bytes.Buffer

	offset := 0
	for _, r := range splitRuns(s) {
		if r.utf8 {
			if !utf8.ValidString(r.text) {
				return nil, &EncodingError{Offset: offset}
			}
			out.WriteString(escUTF8Start)
			out.WriteString(r.text)
			out.WriteString(escUTF8End)
		} else {
			out.WriteString(r.text)
		}
		offset += len(r.text)
	}

	return out.Bytes(), nil
}

// Decode parses a COMPOUND_TEXT byte string back into a Go string.
func Decode(b []byte) (string, error) {
	var out bytes.Buffer
	var jisBuf bytes.Buffer

	flushJIS := func(offset int) error {
		if jisBuf.Len() == 0 {
			return nil
		}
		dec := japanese.ISO2022JP.NewDecoder()
		text, err := dec.Bytes(jisBuf.Bytes())
		if err != nil {
			return &DecodingError{Offset: offset, Reason: "invalid JIS X0208/ASCII designation"}
		}
		out.Write(text)
		jisBuf.Reset()
		return nil
	}

	i := 0
	for i < len(b) {
		if hasEscAt(b, i, escUTF8Start) {
			if err := flushJIS(i); err != nil {
				return "", err
			}

			i += len(escUTF8Start)
			start := i
			for i < len(b) && !hasEscAt(b, i, escUTF8End) {
				i++
			}
			if i >= len(b) {
				return "", &DecodingError{Offset: start, Reason: "unterminated UTF-8 extension"}
			}

			if !utf8.Valid(b[start:i]) {
				return "", &DecodingError{Offset: start, Reason: "invalid UTF-8 in extension"}
			}
			out.Write(b[start:i])
			i += len(escUTF8End)
			continue
		}

		jisBuf.WriteByte(b[i])
		i++
	}

	if err := flushJIS(i); err != nil {
		return "", err
	}

	return out.String(), nil
}

func hasEscAt(b []byte, i int, esc string) bool {
	return i+len(esc) <= len(b) && string(b[i:i+len(esc)]) == esc
}
