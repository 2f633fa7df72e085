package diag

// Diagnostic codes used by the verifier, the builder and the reader.
// They appear in reports and in LSP diagnostics, so a code is never reused
// for a different meaning.
//
// Code ranges:
// V0001-V0099: Verifier findings
// F0100-F0199: Fatal construction errors
// R0200-R0299: Reader errors

const (
	// Entity references (V0001)
	InvalidEntity = "V0001"

	// Layout (V0010-V0019)
	EmptyEbb           = "V0010"
	MissingTerminator  = "V0011"
	EarlyTerminator    = "V0012"
	MissingEntry       = "V0013"
	EntryParamMismatch = "V0014"
	EbbNotInLayout     = "V0015"
	InstNotInLayout    = "V0016"

	// SSA (V0020-V0029)
	InconsistentDef    = "V0020"
	DefNotInLayout     = "V0021"
	UseNotDominated    = "V0022"
	SelfReference      = "V0023"
	UnreachableDefUsed = "V0024"

	// Branches, calls and returns (V0030-V0039)
	BranchArity        = "V0030"
	BranchArgType      = "V0031"
	JumpTableParams    = "V0032"
	ReturnMismatch     = "V0033"
	CallArgMismatch    = "V0034"
	CallResultMismatch = "V0035"

	// Global variables and heaps (V0040-V0049)
	DerefCycle   = "V0040"
	HeapBound    = "V0041"
	HeapMinBound = "V0042"
	HeapSize     = "V0043"

	// Flags (V0050-V0059)
	FlagsClobbered   = "V0050"
	FlagsOverlap     = "V0051"
	FlagsAcrossEdges = "V0052"

	// Types (V0060-V0069)
	OperandType      = "V0060"
	ResultType       = "V0061"
	CtrlType         = "V0062"
	MemoryResident   = "V0063"
	SignatureType    = "V0064"
	ConversionWidth  = "V0065"
	ResultCount      = "V0066"
	ImmediateInvalid = "V0067"
	OperandCount     = "V0068"

	// Fatal construction errors (F0100-F0199)
	FatalCapacity   = "F0100"
	FatalTerminated = "F0101"
	FatalEntity     = "F0102"
	FatalTooMany    = "F0103"
	FatalOperands   = "F0104"
	FatalLayout     = "F0105"

	// Reader errors (R0200-R0299)
	ReaderSyntax      = "R0200"
	ReaderUnknownOp   = "R0201"
	ReaderUnknownType = "R0202"
	ReaderImmediate   = "R0203"
	ReaderUndefined   = "R0204"
	ReaderDuplicate   = "R0205"
	ReaderTypeInfer   = "R0206"
	ReaderDeclaration = "R0207"
	ReaderBuild       = "R0208"
)

// Describe returns a human-readable description of the code.
func Describe(code string) string {
	switch code {
	case InvalidEntity:
		return "Reference to an entity that does not exist in the function"
	case EmptyEbb:
		return "EBB has no instructions"
	case MissingTerminator:
		return "EBB does not end in a terminator"
	case EarlyTerminator:
		return "Terminator is followed by more instructions"
	case MissingEntry:
		return "Function has no entry block"
	case EntryParamMismatch:
		return "Entry block parameters do not match the signature"
	case EbbNotInLayout:
		return "EBB is referenced but not inserted in the layout"
	case InstNotInLayout:
		return "Instruction is laid out in an EBB that does not list it"
	case InconsistentDef:
		return "Value definition does not match the defining entity"
	case DefNotInLayout:
		return "Value is defined by an instruction or EBB outside the layout"
	case UseNotDominated:
		return "Value is used where its definition does not dominate"
	case SelfReference:
		return "Instruction uses its own result"
	case UnreachableDefUsed:
		return "Value defined in unreachable code is used in reachable code"
	case BranchArity:
		return "Branch argument count does not match the target parameters"
	case BranchArgType:
		return "Branch argument type does not match the target parameter"
	case JumpTableParams:
		return "Jump table target has parameters"
	case ReturnMismatch:
		return "Return values do not match the function signature"
	case CallArgMismatch:
		return "Call arguments do not match the callee signature"
	case CallResultMismatch:
		return "Call results do not match the callee signature"
	case DerefCycle:
		return "Global variable dereference chain is cyclic"
	case HeapBound:
		return "Heap bound kind does not match the heap style"
	case HeapMinBound:
		return "Static heap bound is smaller than its minimum size"
	case HeapSize:
		return "Heap size is negative"
	case FlagsClobbered:
		return "Flags value is live across an instruction that clobbers flags"
	case FlagsOverlap:
		return "More than one flags value is live"
	case FlagsAcrossEdges:
		return "Different flags values are live into the same EBB"
	case OperandType:
		return "Operand type does not satisfy the opcode constraint"
	case ResultType:
		return "Result type does not satisfy the opcode constraint"
	case CtrlType:
		return "Controlling type variable is not valid for the opcode"
	case MemoryResident:
		return "Boolean or flags value stored in memory"
	case SignatureType:
		return "Boolean or flags type in a signature"
	case ConversionWidth:
		return "Conversion does not change the width in the required direction"
	case ResultCount:
		return "Instruction has the wrong number of results"
	case ImmediateInvalid:
		return "Immediate operand is out of range"
	case OperandCount:
		return "Instruction has the wrong number of operands"
	case FatalCapacity:
		return "Entity table capacity exceeded"
	case FatalTerminated:
		return "Instruction appended after a terminator"
	case FatalEntity:
		return "Construction referenced an entity that does not exist"
	case FatalTooMany:
		return "Argument list too long"
	case FatalOperands:
		return "Operand count does not fit the instruction format"
	case FatalLayout:
		return "Layout operation on a misplaced entity"
	case ReaderSyntax:
		return "Syntax error"
	case ReaderUnknownOp:
		return "Unknown opcode"
	case ReaderUnknownType:
		return "Unknown type"
	case ReaderImmediate:
		return "Malformed immediate"
	case ReaderUndefined:
		return "Reference to an undefined entity"
	case ReaderDuplicate:
		return "Entity defined more than once"
	case ReaderTypeInfer:
		return "Cannot infer the controlling type"
	case ReaderDeclaration:
		return "Malformed preamble declaration"
	case ReaderBuild:
		return "Function could not be constructed"
	default:
		return "Unknown diagnostic code"
	}
}

// CodeRange returns the component that emits the code.
func CodeRange(code string) string {
	switch {
	case len(code) != 5:
		return "Unknown"
	case code[0] == 'V':
		return "Verifier"
	case code[0] == 'F':
		return "Fatal"
	case code[0] == 'R':
		return "Reader"
	default:
		return "Unknown"
	}
}
