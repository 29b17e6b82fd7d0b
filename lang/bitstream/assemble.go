package bitstream

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mna/theta/lang/compiler"
)

// Assemble links a compiled program's functions into one on-disk bitstream:
// every function's locally-pooled constants are folded into a single global
// pool (relocating that function's chunk references along the way, exactly
// as compiler.merge relocates chunks against each other during emission),
// then the bitstream header, constant pool, and function pool are written
// out in the container format's fixed layout.
//
// Constants are indexed by a single byte on the wire, so a program whose
// functions together compile to more than 255 constant-pool entries
// (duplicates included) is rejected; splitting the pool across multiple bytes is a documented future
// extension, not something this assembler attempts.
func Assemble(fns []*compiler.Function) ([]byte, error) {
	constants, chunks, err := poolConstants(fns)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(BitstreamHeader)
	if err := writeConstantPool(&buf, constants); err != nil {
		return nil, err
	}
	if err := writeFunctionPool(&buf, fns, chunks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// poolConstants merges every function's local constant pool into one global
// pool and returns each function's chunk bytes relocated against it.
func poolConstants(fns []*compiler.Function) ([]compiler.Constant, [][]byte, error) {
	var constants []compiler.Constant
	chunks := make([][]byte, len(fns))
	for i, fn := range fns {
		base := len(constants)
		constants = append(constants, fn.Chunk.Constants...)
		chunks[i] = compiler.RelocateConstantRefs(fn.Chunk.Code, base)
	}
	if len(constants) > 255 {
		return nil, nil, &FormatError{Msg: "program has more than 255 constant-pool entries, which the u8 constant index cannot address"}
	}
	return constants, chunks, nil
}

func writeConstantPool(buf *bytes.Buffer, constants []compiler.Constant) error {
	buf.Write(ConstantPoolHeader)
	buf.WriteByte(0) // reserved
	buf.WriteByte(byte(len(constants)))

	for _, c := range constants {
		switch c.Kind {
		case compiler.ConstFloat:
			buf.Write(DoubleMarker)
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(c.Float))
			buf.Write(b[:])
		case compiler.ConstInt:
			buf.Write(IntMarker)
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(c.Int))
			buf.Write(b[:])
		case compiler.ConstBool:
			buf.Write(BoolMarker)
			if c.Bool {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		case compiler.ConstString:
			buf.Write(StringMarker)
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(len(c.Str)))
			buf.Write(b[:])
			buf.WriteString(c.Str)
		default:
			return &FormatError{Msg: "constant has no wire marker for its kind"}
		}
	}
	return nil
}

func writeFunctionPool(buf *bytes.Buffer, fns []*compiler.Function, chunks [][]byte) error {
	buf.Write(FunctionPoolHeader)
	buf.WriteByte(byte(len(fns)))

	for i, fn := range fns {
		buf.Write(FunctionHeader)

		var nameLen [8]byte
		binary.LittleEndian.PutUint64(nameLen[:], uint64(len(fn.Name)))
		buf.Write(nameLen[:])
		buf.WriteString(fn.Name)

		var arity [8]byte
		binary.LittleEndian.PutUint64(arity[:], uint64(len(fn.Args)))
		buf.Write(arity[:])
		for _, a := range fn.Args {
			tag, err := EncodeTy(a)
			if err != nil {
				return err
			}
			buf.WriteByte(byte(tag))
		}

		retTag, err := EncodeTy(fn.ReturnTy)
		if err != nil {
			return err
		}
		buf.WriteByte(byte(retTag))

		buf.Write(ChunkHeader)
		code := chunks[i]
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(code)))
		buf.Write(size[:])
		buf.Write(code)
	}
	return nil
}
