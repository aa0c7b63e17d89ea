// Package wirecodec implements the low-level read/write helpers shared
// by every XIM message in the wire package.
//
// Unlike a fixed-endian protocol, XIM negotiates the byte order of the
// connection during CONNECT, so every helper here takes an explicit
// binary.ByteOrder instead of assuming big endian.
package wirecodec

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ReadWriter is the plain io.ReaderFrom/io.WriterTo pair. The wire
// package's types take an explicit byte order in their ReadFrom and
// WriteTo methods and so do not satisfy it.
type ReadWriter interface {
	io.ReaderFrom
	io.WriterTo
}

// countingReader tracks the number of bytes consumed from the
// underlying reader so ReadFrom can report it faithfully.
type countingReader struct {
	io.Reader
	read int64
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	r.read += int64(n)
	return n, err
}

// WriteTo serializes each element in v, in order, into w using order.
// Elements implementing io.WriterTo serialize themselves; everything
// else is handed to encoding/binary.
func WriteTo(w io.Writer, order binary.ByteOrder, v ...interface{}) (int64, error) {
	var wbuf bytes.Buffer

	for _, elem := range v {
		var err error

		switch elem := elem.(type) {
		case io.WriterTo:
			_, err = elem.WriteTo(&wbuf)
		default:
			err = binary.Write(&wbuf, order, elem)
		}

		if err != nil {
			return 0, err
		}
	}

	return wbuf.WriteTo(w)
}

// ReadFrom deserializes each element in v, in order, from r using order.
func ReadFrom(r io.Reader, order binary.ByteOrder, v ...interface{}) (int64, error) {
	cr := &countingReader{Reader: r}

	for _, elem := range v {
		var err error

		switch elem := elem.(type) {
		case io.ReaderFrom:
			_, err = elem.ReadFrom(cr)
		default:
			err = binary.Read(cr, order, elem)
		}

		if err != nil {
			return cr.read, err
		}
	}

	return cr.read, nil
}

// Pad4 returns the number of zero bytes required to align length to
// the next 4-byte boundary, per spec's padding rule:
// (4 - n mod 4) mod 4.
func Pad4(length int) int {
	return (4 - length%4) % 4
}

// Pad4Bytes returns a zero-filled slice of Pad4(length) bytes.
func Pad4Bytes(length int) []byte {
	return make([]byte, Pad4(length))
}

// WritePadded writes b followed by enough zero bytes to align the
// total to a 4-byte boundary.
func WritePadded(w io.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	if err != nil {
		return int64(n), err
	}

	pad := Pad4Bytes(len(b))
	if len(pad) == 0 {
		return int64(n), nil
	}

	nn, err := w.Write(pad)
	return int64(n + nn), err
}

// ReadPadded reads exactly n bytes from r plus their 4-byte alignment
// padding, and returns the n unpadded bytes.
func ReadPadded(r io.Reader, n int) ([]byte, int64, error) {
	total := n + Pad4(n)
	buf := make([]byte, total)

	read, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, int64(read), err
	}

	return buf[:n], int64(read), nil
}
