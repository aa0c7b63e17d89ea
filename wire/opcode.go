// Package wire implements the bit-exact codec for every XIM message
// variant (spec.md section 4.2), including the nested attribute value
// types of section 4.2's closing paragraph.
package wire

// Opcode is an XIM message's major opcode. The minor opcode byte is
// reserved for vendor extensions and is always zero for the messages
// this module implements, so it is not part of this type.
type Opcode uint8

// XIM 1.0 major opcodes, in the conventional numbering used by the
// reference Xlib/libX11 IMdkit implementations.
const (
	OpConnect      Opcode = 1
	OpConnectReply Opcode = 2

	OpDisconnect      Opcode = 3
	OpDisconnectReply Opcode = 4

	OpAuthRequired Opcode = 10
	OpAuthReply    Opcode = 11
	OpAuthNext     Opcode = 12
	OpAuthSetup    Opcode = 13
	OpAuthNG       Opcode = 14

	OpError Opcode = 20

	OpOpen      Opcode = 30
	OpOpenReply Opcode = 31

	OpClose      Opcode = 32
	OpCloseReply Opcode = 33

	OpTriggerNotify      Opcode = 35
	OpTriggerNotifyReply Opcode = 36

	OpEncodingNegotiation      Opcode = 38
	OpEncodingNegotiationReply Opcode = 39

	OpQueryExtension      Opcode = 40
	OpQueryExtensionReply Opcode = 41

	OpSetIMValues      Opcode = 42
	OpSetIMValuesReply Opcode = 43

	OpGetIMValues      Opcode = 44
	OpGetIMValuesReply Opcode = 45

	OpCreateIC      Opcode = 50
	OpCreateICReply Opcode = 51

	OpDestroyIC      Opcode = 52
	OpDestroyICReply Opcode = 53

	OpSetICValues      Opcode = 54
	OpSetICValuesReply Opcode = 55

	OpGetICValues      Opcode = 56
	OpGetICValuesReply Opcode = 57

	OpSetICFocus   Opcode = 58
	OpUnsetICFocus Opcode = 59

	OpForwardEvent Opcode = 60

	OpSync      Opcode = 61
	OpSyncReply Opcode = 62

	OpCommit Opcode = 63

	OpResetIC      Opcode = 64
	OpResetICReply Opcode = 65

	OpGeometry Opcode = 70

	OpPreeditStart      Opcode = 73
	OpPreeditStartReply Opcode = 74
	OpPreeditDraw       Opcode = 75
	OpPreeditCaret      Opcode = 76
	OpPreeditCaretReply Opcode = 77
	OpPreeditDone       Opcode = 78

	OpStatusStart Opcode = 79
	OpStatusDraw  Opcode = 80
	OpStatusDone  Opcode = 81
)

var opcodeNames = map[Opcode]string{
	OpConnect: "CONNECT", OpConnectReply: "CONNECT_REPLY",
	OpDisconnect: "DISCONNECT", OpDisconnectReply: "DISCONNECT_REPLY",
	OpAuthRequired: "AUTH_REQUIRED", OpAuthReply: "AUTH_REPLY",
	OpAuthNext: "AUTH_NEXT", OpAuthSetup: "AUTH_SETUP", OpAuthNG: "AUTH_NG",
	OpError: "ERROR",
	OpOpen:  "OPEN", OpOpenReply: "OPEN_REPLY",
	OpClose: "CLOSE", OpCloseReply: "CLOSE_REPLY",
	OpTriggerNotify: "TRIGGER_NOTIFY", OpTriggerNotifyReply: "TRIGGER_NOTIFY_REPLY",
	OpEncodingNegotiation: "ENCODING_NEGOTIATION", OpEncodingNegotiationReply: "ENCODING_NEGOTIATION_REPLY",
	OpQueryExtension: "QUERY_EXTENSION", OpQueryExtensionReply: "QUERY_EXTENSION_REPLY",
	OpSetIMValues: "SET_IM_VALUES", OpSetIMValuesReply: "SET_IM_VALUES_REPLY",
	OpGetIMValues: "GET_IM_VALUES", OpGetIMValuesReply: "GET_IM_VALUES_REPLY",
	OpCreateIC: "CREATE_IC", OpCreateICReply: "CREATE_IC_REPLY",
	OpDestroyIC: "DESTROY_IC", OpDestroyICReply: "DESTROY_IC_REPLY",
	OpSetICValues: "SET_IC_VALUES", OpSetICValuesReply: "SET_IC_VALUES_REPLY",
	OpGetICValues: "GET_IC_VALUES", OpGetICValuesReply: "GET_IC_VALUES_REPLY",
	OpSetICFocus: "SET_IC_FOCUS", OpUnsetICFocus: "UNSET_IC_FOCUS",
	OpForwardEvent: "FORWARD_EVENT",
	OpSync:         "SYNC", OpSyncReply: "SYNC_REPLY",
	OpCommit:  "COMMIT",
	OpResetIC: "RESET_IC", OpResetICReply: "RESET_IC_REPLY",
	OpGeometry:     "GEOMETRY",
	OpPreeditStart:  "PREEDIT_START", OpPreeditStartReply: "PREEDIT_START_REPLY",
	OpPreeditDraw:  "PREEDIT_DRAW",
	OpPreeditCaret: "PREEDIT_CARET", OpPreeditCaretReply: "PREEDIT_CARET_REPLY",
	OpPreeditDone: "PREEDIT_DONE",
	OpStatusStart: "STATUS_START", OpStatusDraw: "STATUS_DRAW", OpStatusDone: "STATUS_DONE",
}

// String returns the conventional XIM message name, e.g. "OPEN_REPLY".
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}
