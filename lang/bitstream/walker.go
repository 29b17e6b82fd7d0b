package bitstream

import (
	"encoding/binary"
	"math"
)

// Visitor receives the stream of structural events a Walker produces while
// reading a bitstream. VisitFile/VisitBitstream mark section boundaries;
// VisitConstant and VisitFunction are called once per pool entry, in
// file order, so a constant's u8 index is simply its call order.
type Visitor interface {
	VisitFile()
	VisitBitstream()
	VisitConstant(c Constant)
	VisitFunction(fn CompiledFunction)
}

// Constant is one entry of the constant pool as read off the wire, before
// any interning: the same shape compiler.Constant has, but decoded rather
// than emitted.
type Constant struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Walker streams over an assembled bitstream's bytes, invoking a Visitor's
// callbacks as it goes. It never allocates the whole structure itself:
// that is the visitor's job (see BasicDisassembler and StringDisassembler),
// which keeps the walker reusable for purposes that don't need one.
type Walker struct{}

// Walk drives visitor over data, which must be a complete assembled
// bitstream (BitstreamHeader onward).
func (Walker) Walk(visitor Visitor, data []byte) error {
	visitor.VisitFile()
	return walkBitstream(visitor, data)
}

func walkBitstream(visitor Visitor, data []byte) error {
	if len(data) < 8 || !bytesEqual(data[0:8], BitstreamHeader) {
		return &FormatError{Msg: "missing or invalid bitstream header"}
	}
	visitor.VisitBitstream()

	n, err := walkConstantPool(visitor, data[8:])
	if err != nil {
		return err
	}
	return walkFunctionPool(visitor, data[8+n:])
}

func walkConstantPool(visitor Visitor, data []byte) (int, error) {
	if len(data) < 10 || !bytesEqual(data[0:8], ConstantPoolHeader) {
		return 0, &FormatError{Msg: "missing or invalid constant pool header"}
	}
	count := int(data[9])
	offset := 10

	for i := 0; i < count; i++ {
		if offset+2 > len(data) {
			return 0, &FormatError{Msg: "truncated constant pool"}
		}
		marker := data[offset : offset+2]
		offset += 2
		switch {
		case bytesEqual(marker, DoubleMarker):
			if offset+8 > len(data) {
				return 0, &FormatError{Msg: "truncated double constant"}
			}
			bits := binary.LittleEndian.Uint64(data[offset : offset+8])
			visitor.VisitConstant(Constant{Kind: KindFloat, Float: float64FromBits(bits)})
			offset += 8
		case bytesEqual(marker, IntMarker):
			if offset+8 > len(data) {
				return 0, &FormatError{Msg: "truncated int constant"}
			}
			v := int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			visitor.VisitConstant(Constant{Kind: KindInt, Int: v})
			offset += 8
		case bytesEqual(marker, BoolMarker):
			if offset+1 > len(data) {
				return 0, &FormatError{Msg: "truncated bool constant"}
			}
			visitor.VisitConstant(Constant{Kind: KindBool, Bool: data[offset] == 1})
			offset++
		case bytesEqual(marker, StringMarker):
			if offset+8 > len(data) {
				return 0, &FormatError{Msg: "truncated string constant length"}
			}
			strLen := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
			offset += 8
			if offset+strLen > len(data) {
				return 0, &FormatError{Msg: "truncated string constant"}
			}
			visitor.VisitConstant(Constant{Kind: KindString, Str: string(data[offset : offset+strLen])})
			offset += strLen
		default:
			return 0, &FormatError{Msg: "unrecognized constant marker"}
		}
	}
	return offset, nil
}

func walkFunctionPool(visitor Visitor, data []byte) error {
	if len(data) < 9 || !bytesEqual(data[0:8], FunctionPoolHeader) {
		return &FormatError{Msg: "missing or invalid function pool header"}
	}
	count := int(data[8])
	offset := 9

	for i := 0; i < count; i++ {
		if offset+4 > len(data) || !bytesEqual(data[offset:offset+4], FunctionHeader) {
			return &FormatError{Msg: "missing or invalid function header"}
		}
		offset += 4

		if offset+8 > len(data) {
			return &FormatError{Msg: "truncated function name length"}
		}
		nameLen := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
		offset += 8
		if offset+nameLen > len(data) {
			return &FormatError{Msg: "truncated function name"}
		}
		name := string(data[offset : offset+nameLen])
		offset += nameLen

		if offset+8 > len(data) {
			return &FormatError{Msg: "truncated function arity"}
		}
		arity := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
		offset += 8
		if offset+arity > len(data) {
			return &FormatError{Msg: "truncated function argument types"}
		}
		args := make([]TyTag, arity)
		for j := 0; j < arity; j++ {
			args[j] = TyTag(data[offset+j])
		}
		offset += arity

		if offset+1 > len(data) {
			return &FormatError{Msg: "truncated function return type"}
		}
		retTy := TyTag(data[offset])
		offset++

		chunk, n, err := walkChunk(data[offset:])
		if err != nil {
			return err
		}
		offset += n

		visitor.VisitFunction(CompiledFunction{Name: name, Args: args, ReturnTy: retTy, Chunk: chunk})
	}
	return nil
}

func walkChunk(data []byte) ([]byte, int, error) {
	if len(data) < 16 || !bytesEqual(data[0:8], ChunkHeader) {
		return nil, 0, &FormatError{Msg: "missing or invalid chunk header"}
	}
	size := int(binary.LittleEndian.Uint64(data[8:16]))
	if 16+size > len(data) {
		return nil, 0, &FormatError{Msg: "truncated chunk body"}
	}
	return data[16 : 16+size], 16 + size, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}
