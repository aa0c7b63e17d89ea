package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "CONNECT", OpConnect.String())
	assert.Equal(t, "OPEN_REPLY", OpOpenReply.String())
	assert.Equal(t, "UNKNOWN", Opcode(255).String())
}
