package wire

import (
	"encoding/binary"
	"io"

	"github.com/go-xim/xim/internal/wirecodec"
)

// TriggerNotify informs the server that one of the client's
// on-the-spot hot-key triggers fired, asking it to start or stop
// composition.
type TriggerNotify struct {
	ImID, IcID uint16
	Flag       uint32
	Index      uint32
	EventMask  uint32
}

func (TriggerNotify) Opcode() Opcode { return OpTriggerNotify }

func (t TriggerNotify) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	n, err := imIcPair{t.ImID, t.IcID}.WriteTo(w, order)
	if err != nil {
		return n, err
	}
	nn, err := wirecodec.WriteTo(w, order, t.Flag, t.Index, t.EventMask)
	return n + nn, err
}

func (t *TriggerNotify) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	if err != nil {
		return n, err
	}
	t.ImID, t.IcID = p.ImID, p.IcID
	nn, err := wirecodec.ReadFrom(r, order, &t.Flag, &t.Index, &t.EventMask)
	return n + nn, err
}

// TriggerNotifyReply acknowledges TriggerNotify.
type TriggerNotifyReply struct{ ImID, IcID uint16 }

func (TriggerNotifyReply) Opcode() Opcode { return OpTriggerNotifyReply }
func (t TriggerNotifyReply) Encode(w io.Writer, order binary.ByteOrder) (int64, error) {
	return imIcPair{t.ImID, t.IcID}.WriteTo(w, order)
}
func (t *TriggerNotifyReply) Decode(r io.Reader, order binary.ByteOrder, h Header) (int64, error) {
	p := imIcPair{}
	n, err := p.ReadFrom(r, order)
	t.ImID, t.IcID = p.ImID, p.IcID
	return n, err
}
