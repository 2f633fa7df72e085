package ir

import (
	"strings"

	"ebbir/internal/types"
)

// CallConv is a calling convention tag.
type CallConv uint8

const (
	CallConvFast CallConv = iota
	CallConvCold
	CallConvSystemV
	CallConvFastcall
	CallConvBaldrdash
)

var callConvNames = [...]string{
	CallConvFast:      "fast",
	CallConvCold:      "cold",
	CallConvSystemV:   "system_v",
	CallConvFastcall:  "fastcall",
	CallConvBaldrdash: "baldrdash",
}

func (c CallConv) String() string { return callConvNames[c] }

// ParseCallConv parses a calling convention name.
func ParseCallConv(s string) (CallConv, bool) {
	for i, n := range callConvNames {
		if n == s {
			return CallConv(i), true
		}
	}

	return 0, false
}

// ArgumentExtension says how a narrow integer is widened by the ABI.
type ArgumentExtension uint8

const (
	ExtNone ArgumentExtension = iota
	ExtUext
	ExtSext
)

// ArgumentPurpose marks a parameter with a special role.
type ArgumentPurpose uint8

const (
	PurposeNormal ArgumentPurpose = iota
	PurposeStructReturn
	PurposeLink
	PurposeFramePointer
	PurposeCalleeSaved
	PurposeVMContext
)

var purposeNames = [...]string{
	PurposeNormal:       "normal",
	PurposeStructReturn: "sret",
	PurposeLink:         "link",
	PurposeFramePointer: "fp",
	PurposeCalleeSaved:  "csr",
	PurposeVMContext:    "vmctx",
}

// ParsePurpose parses a special parameter role.
func ParsePurpose(s string) (ArgumentPurpose, bool) {
	for i, n := range purposeNames {
		if i != int(PurposeNormal) && n == s {
			return ArgumentPurpose(i), true
		}
	}

	return 0, false
}

// AbiParam is one parameter or return value of a signature.
type AbiParam struct {
	Type      types.Type
	Extension ArgumentExtension
	Purpose   ArgumentPurpose
}

// Param returns a plain parameter of type t.
func Param(t types.Type) AbiParam {
	return AbiParam{Type: t}
}

func (p AbiParam) String() string {
	var b strings.Builder

	b.WriteString(p.Type.String())

	switch p.Extension {
	case ExtUext:
		b.WriteString(" uext")
	case ExtSext:
		b.WriteString(" sext")
	}

	if p.Purpose != PurposeNormal {
		b.WriteString(" ")
		b.WriteString(purposeNames[p.Purpose])
	}

	return b.String()
}

// Signature describes the parameters and returns of a function.
type Signature struct {
	Params   []AbiParam
	Returns  []AbiParam
	CallConv CallConv
}

// NewSignature returns a fast-convention signature with plain parameters.
func NewSignature(params []types.Type, returns []types.Type) Signature {
	sig := Signature{CallConv: CallConvFast}

	for _, t := range params {
		sig.Params = append(sig.Params, Param(t))
	}

	for _, t := range returns {
		sig.Returns = append(sig.Returns, Param(t))
	}

	return sig
}

// ParamTypes returns the parameter types in order.
func (s *Signature) ParamTypes() []types.Type {
	return abiTypes(s.Params)
}

// ReturnTypes returns the return types in order.
func (s *Signature) ReturnTypes() []types.Type {
	return abiTypes(s.Returns)
}

func abiTypes(params []AbiParam) []types.Type {
	r := make([]types.Type, len(params))
	for i, p := range params {
		r[i] = p.Type
	}

	return r
}

// String prints the signature as "(params) -> returns callconv".
func (s Signature) String() string {
	var b strings.Builder

	b.WriteString("(")
	writeParams(&b, s.Params)
	b.WriteString(")")

	if len(s.Returns) != 0 {
		b.WriteString(" -> ")
		writeParams(&b, s.Returns)
	}

	if s.CallConv != CallConvFast {
		b.WriteString(" ")
		b.WriteString(s.CallConv.String())
	}

	return b.String()
}

func writeParams(b *strings.Builder, params []AbiParam) {
	for i, p := range params {
		if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.String())
	}
}
