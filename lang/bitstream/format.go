// Package bitstream implements the on-disk container format that a
// compiled program is serialized to and loaded from: a bitstream header, a
// global constant pool, and a function pool whose entries each carry a
// self-describing chunk of relocated bytecode. It also implements the
// streaming walker/visitor pair used to read that format back, and the two
// built-in visitors (a basic disassembler that produces runtime Values for
// the VM loader, and a string disassembler for diagnostics).
package bitstream

import "github.com/mna/theta/lang/types"

// Header and marker byte sequences. These are wire constants, not opcodes:
// every reader and writer in this package must agree on them byte-for-byte.
var (
	// BitstreamHeader spells "DEADCAFE" as eight individual nibble bytes
	// (0x0D, 0x0E, ...), not four packed bytes (0xDE, 0xAD, ...): the
	// container format's literal 8-byte header.
	BitstreamHeader = []byte{0x0D, 0x0E, 0x0A, 0x0D, 0x0C, 0x0A, 0x0F, 0x0E}
	ConstantPoolHeader = []byte("TheConst")
	FunctionPoolHeader = []byte{0xF4, 0x17, 0xC7, 0x10, 0x17, 0x90, 0x09, 0xF4}
	FunctionHeader     = []byte{0x11, 0x22, 0x33, 0x44}
	ChunkHeader        = []byte("TheChunk")

	DoubleMarker = []byte{0xFF, 0xFF}
	IntMarker    = []byte{0xAA, 0xAA}
	BoolMarker   = []byte{0xBB, 0xBB}
	StringMarker = []byte{0xCC, 0xCC}
)

// TyTag is the one-byte encoding of a types.Info used for function argument
// and return types in the function pool. The set is closed and matches
// types.Info's own closed set, minus Function and NonLiteral: neither can
// appear as a compiled function's resolved signature.
type TyTag byte

const (
	TyNone   TyTag = 0
	TyBool   TyTag = 1
	TyInt    TyTag = 2
	TyFloat  TyTag = 3
	TyString TyTag = 4
)

// EncodeTy maps a resolved types.Info to its wire tag.
func EncodeTy(t types.Info) (TyTag, error) {
	switch t.(type) {
	case types.None, nil:
		return TyNone, nil
	case types.Boolean:
		return TyBool, nil
	case types.Int:
		return TyInt, nil
	case types.Float:
		return TyFloat, nil
	case types.String:
		return TyString, nil
	default:
		return 0, &FormatError{Msg: "type " + t.String() + " has no wire encoding"}
	}
}

// DecodeTy maps a wire tag back to a types.Info.
func DecodeTy(tag TyTag) (types.Info, error) {
	switch tag {
	case TyNone:
		return types.None{}, nil
	case TyBool:
		return types.Boolean{}, nil
	case TyInt:
		return types.Int{}, nil
	case TyFloat:
		return types.Float{}, nil
	case TyString:
		return types.String{}, nil
	default:
		return nil, &FormatError{Msg: "unknown type tag"}
	}
}

// FormatError reports a malformed bitstream: a missing or mismatched
// header, an unrecognized marker, or a truncated read.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "bitstream: " + e.Msg }
