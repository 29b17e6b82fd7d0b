package symtab

import "github.com/mna/theta/lang/types"

// Frame holds the per-function slot-assignment counters the parser
// consults while walking a function body. Parameters occupy slots
// [0, NumParams) and locals occupy [NumParams, NumParams+NumLocals) in
// declaration order; a Frame is shared by reference among every node
// parsed within the function so that the final NumLocals/NumParams counts
// are visible to the emitter once parsing completes.
type Frame struct {
	NumParams int
	NumLocals int

	// ReturnTy is the function's declared return type, used by the parser to
	// validate `return` expressions; it is nil for the top-level chunk, which
	// has no return type.
	ReturnTy types.Info
}

// NewFrame creates an empty frame with the given declared return type
// (which may be nil for a chunk with no return type).
func NewFrame(returnTy types.Info) *Frame {
	return &Frame{ReturnTy: returnTy}
}

// NewParam assigns the next parameter slot and returns it. Parameter slots
// must all be assigned before any NewLocal call in the same frame, so that
// params precede locals in the slot layout.
func (f *Frame) NewParam() int {
	slot := f.NumParams
	f.NumParams++
	return slot
}

// NewLocal assigns the next local slot (after all parameter slots) and
// returns it.
func (f *Frame) NewLocal() int {
	slot := f.NumParams + f.NumLocals
	f.NumLocals++
	return slot
}

// TotalSlots returns the total number of frame slots (params + locals).
func (f *Frame) TotalSlots() int {
	return f.NumParams + f.NumLocals
}
