package hookapi

// Serialized type codes. The low 16 bits of a field id carry the field
// code, the high 16 bits the type code.
const (
	TypeUInt16    = 1
	TypeUInt32    = 2
	TypeUInt64    = 3
	TypeUInt128   = 4
	TypeUInt256   = 5
	TypeAmount    = 6
	TypeBlob      = 7
	TypeAccountID = 8
	TypeObject    = 14
	TypeArray     = 15
	TypeUInt8     = 16
	TypeUInt160   = 17
	TypeVector    = 18
	TypeIssue     = 19
)

// FieldID combines a type code and a field code the way the wire preamble
// does: (type << 16) | field.
func FieldID(typeCode, fieldCode int) uint32 {
	return uint32(typeCode)<<16 | uint32(fieldCode)
}

// FieldType extracts the type nibble/byte from a combined field id.
func FieldType(id uint32) int { return int(id >> 16) }

// FieldCode extracts the field part of a combined field id.
func FieldCode(id uint32) int { return int(id & 0xFFFF) }

// Field ids used by the core. Named after the ledger's sf* constants.
const (
	SfTransactionType     = uint32(TypeUInt16)<<16 | 2
	SfSignerWeight        = uint32(TypeUInt16)<<16 | 3
	SfHookResult          = uint32(TypeUInt16)<<16 | 18
	SfHookEmitCount       = uint32(TypeUInt16)<<16 | 19
	SfHookExecutionIndex  = uint32(TypeUInt16)<<16 | 20
	SfHookStateChangeCount = uint32(TypeUInt16)<<16 | 21

	SfSequence            = uint32(TypeUInt32)<<16 | 4
	SfOwnerCount          = uint32(TypeUInt32)<<16 | 13
	SfFirstLedgerSequence = uint32(TypeUInt32)<<16 | 26
	SfLastLedgerSequence  = uint32(TypeUInt32)<<16 | 27
	SfHookStateCount      = uint32(TypeUInt32)<<16 | 45
	SfHookStateDataMaxSize = uint32(TypeUInt32)<<16 | 46
	SfEmitGeneration      = uint32(TypeUInt32)<<16 | 43

	SfOwnerNode            = uint32(TypeUInt64)<<16 | 4
	SfHookOn               = uint32(TypeUInt64)<<16 | 16
	SfEmitBurden           = uint32(TypeUInt64)<<16 | 12
	SfHookInstructionCount = uint32(TypeUInt64)<<16 | 17
	SfHookReturnCode       = uint32(TypeUInt64)<<16 | 18

	SfEmitParentTxnID = uint32(TypeUInt256)<<16 | 10
	SfEmitNonce       = uint32(TypeUInt256)<<16 | 11
	SfHookStateKey    = uint32(TypeUInt256)<<16 | 22
	SfHookHash        = uint32(TypeUInt256)<<16 | 31

	SfAmount  = uint32(TypeAmount)<<16 | 1
	SfBalance = uint32(TypeAmount)<<16 | 2
	SfFee     = uint32(TypeAmount)<<16 | 8

	SfSigningPubKey    = uint32(TypeBlob)<<16 | 3
	SfTxnSignature     = uint32(TypeBlob)<<16 | 4
	SfSignature        = uint32(TypeBlob)<<16 | 6
	SfHookStateData    = uint32(TypeBlob)<<16 | 22
	SfHookReturnString = uint32(TypeBlob)<<16 | 23

	SfAccount      = uint32(TypeAccountID)<<16 | 1
	SfDestination  = uint32(TypeAccountID)<<16 | 3
	SfEmitCallback = uint32(TypeAccountID)<<16 | 9
	SfHookAccount  = uint32(TypeAccountID)<<16 | 10

	SfEmitDetails   = uint32(TypeObject)<<16 | 12
	SfSignerEntry   = uint32(TypeObject)<<16 | 11
	SfEmittedTxn    = uint32(TypeObject)<<16 | 13
	SfHookExecution = uint32(TypeObject)<<16 | 14

	SfSignerEntries = uint32(TypeArray)<<16 | 4
)

// Transaction type codes referenced by the trigger mask.
const (
	TtPayment      = 0
	TtEscrowFinish = 2
	TtHookSet      = 22
)
