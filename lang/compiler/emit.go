package compiler

import (
	"fmt"
	"strconv"

	"github.com/mna/theta/lang/ast"
	"github.com/mna/theta/lang/symtab"
	"github.com/mna/theta/lang/token"
	"github.com/mna/theta/lang/types"
)

// Function is one compiled item: a chunk plus the signature information the
// bitstream writer needs to emit a function-pool entry.
type Function struct {
	Name     string
	Args     []types.Info
	ReturnTy types.Info
	Chunk    *Chunk
}

// CompileProgram lowers every item of prog into a Function, in the same
// order as prog.Items (so Items[0], the implicit top-level script, is
// always Functions[0]).
func CompileProgram(prog *ast.Program) ([]*Function, error) {
	fns := make([]*Function, len(prog.Items))
	for i, item := range prog.Items {
		fn, err := CompileItem(item)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

// CompileItem lowers a single function (or the implicit top-level script)
// into a Function. The body's own chunk is always followed by a bare
// Return as a safety net for control flow that falls off the end without
// an explicit return statement.
func CompileItem(item *ast.Item) (*Function, error) {
	body, err := emitBlock(item.Body)
	if err != nil {
		return nil, err
	}
	body = merge(body, single(Return))

	argTys := make([]types.Info, len(item.Args))
	for i, a := range item.Args {
		argTys[i] = a.Ty
	}
	return &Function{Name: item.Name, Args: argTys, ReturnTy: item.ReturnTy, Chunk: body}, nil
}

// emitBlock lowers a block's statements, then its value (the trailing
// partial expression, or a synthesized None when it ends in ";"), then
// discards the locals the block declared directly.
//
// Locals live as permanent stack slots for the rest of the block (per
// DefineLocal's "copy top into slot without popping" contract), so a
// plain run of NumLocals Pops after the block's own value has already
// been pushed would drop that value first instead of the locals beneath
// it. Since GetLocal only ever clones a slot's value, the value pushed as
// the block's result is always independent of the slots about to be
// discarded, so it is safe to relocate: DefineLocal(baseSlot) copies it
// down onto the lowest slot this block owns (without popping), and the
// following NumLocals Pops then remove everything above that slot —
// the stale copies of the higher locals, and the now-redundant original
// copy of the result — leaving the relocated result as the new top,
// exactly one slot above the block's entry height.
func emitBlock(b *ast.BlockExpr) (*Chunk, error) {
	var parts []*Chunk
	for _, s := range b.Stmts {
		c, err := emitStmt(s)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	if b.FinalExpr != nil {
		c, err := emitExpr(b.FinalExpr)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	} else {
		parts = append(parts, emitNone())
	}
	if b.NumLocals > 0 {
		baseSlot, err := firstLocalSlot(b.Stmts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, withArg(DefineLocal, uint64(baseSlot)))
		for i := 0; i < b.NumLocals; i++ {
			parts = append(parts, single(Pop))
		}
	}
	return merge(parts...), nil
}

// firstLocalSlot returns the frame slot of the first var-decl directly in
// stmts, i.e. the lowest slot this block's own locals occupy (slots are
// assigned in increasing declaration order).
func firstLocalSlot(stmts []ast.Stmt) (int, error) {
	for _, s := range stmts {
		v, ok := s.(*ast.VarStmt)
		if !ok {
			continue
		}
		b, ok := v.Table.Get(v.Name, v.ScopeDepth)
		if !ok {
			return 0, fmt.Errorf("compiler: %q has no binding", v.Name)
		}
		return b.Slot, nil
	}
	return 0, fmt.Errorf("compiler: block reports locals but declares none")
}

func emitStmt(s ast.Stmt) (*Chunk, error) {
	switch s := s.(type) {
	case *ast.VarStmt:
		return emitVarStmt(s)
	case *ast.ExprStmt:
		c, err := emitExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return merge(c, single(Pop)), nil
	case *ast.PrintStmt:
		c, err := emitExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return merge(c, single(DebugPrint)), nil
	default:
		return nil, fmt.Errorf("compiler: unsupported statement %T", s)
	}
}

func emitVarStmt(s *ast.VarStmt) (*Chunk, error) {
	init, err := emitExpr(s.Init)
	if err != nil {
		return nil, err
	}
	b, ok := s.Table.Get(s.Name, s.ScopeDepth)
	if !ok {
		return nil, fmt.Errorf("compiler: %q has no binding", s.Name)
	}
	if b.Kind == symtab.GlobalVariable {
		return merge(init, withConstant(DefineGlobal, Constant{Kind: ConstString, Str: s.Name})), nil
	}
	return merge(init, withArg(DefineLocal, uint64(b.Slot))), nil
}

// emitNone pushes a single placeholder value via Push(1), the vehicle the
// container format provides for a value-less result (there is no None
// entry in the constant pool's tag set), used wherever an expression that
// always yields exactly one stack value has nothing real to push: an
// absent else branch, and a loop's own result.
func emitNone() *Chunk {
	return withArg(Push, 1)
}

func emitExpr(e ast.Expr) (*Chunk, error) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		return emitLiteral(e)
	case *ast.BinaryExpr:
		return emitBinary(e)
	case *ast.UnaryExpr:
		return emitUnary(e)
	case *ast.SequenceExpr:
		return emitSequence(e)
	case *ast.AssignmentExpr:
		return emitAssignment(e)
	case *ast.IfExpr:
		return emitIf(e)
	case *ast.BlockExpr:
		return emitBlock(e)
	case *ast.LoopExpr:
		return emitLoop(e)
	case *ast.CallExpr:
		return emitCall(e)
	case *ast.ReturnExpr:
		return emitReturn(e)
	default:
		return nil, fmt.Errorf("compiler: unsupported expression %T", e)
	}
}

func emitLiteral(lit *ast.LiteralExpr) (*Chunk, error) {
	switch lit.Tok {
	case token.INT:
		n, err := strconv.ParseInt(lit.Raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("compiler: %q is not a valid int literal: %w", lit.Raw, err)
		}
		return withConstant(Constant, Constant{Kind: ConstInt, Int: n}), nil
	case token.FLOAT:
		n, err := strconv.ParseFloat(lit.Raw, 32)
		if err != nil {
			return nil, fmt.Errorf("compiler: %q is not a valid float literal: %w", lit.Raw, err)
		}
		return withConstant(Constant, Constant{Kind: ConstFloat, Float: n}), nil
	case token.STRING:
		// Raw carries the quotes verbatim (the scanner never strips them from
		// the token span); there are no escapes to unquote.
		s := lit.Raw
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		}
		return withConstant(Constant, Constant{Kind: ConstString, Str: s}), nil
	case token.TRUE:
		return withConstant(Constant, Constant{Kind: ConstBool, Bool: true}), nil
	case token.FALSE:
		return withConstant(Constant, Constant{Kind: ConstBool, Bool: false}), nil
	case token.IDENT:
		return emitIdentRef(lit)
	default:
		return nil, fmt.Errorf("compiler: unsupported literal token %s", lit.Tok)
	}
}

func emitIdentRef(lit *ast.LiteralExpr) (*Chunk, error) {
	b, ok := lit.Table.Get(lit.Raw, lit.ScopeDepth)
	if !ok {
		return nil, fmt.Errorf("compiler: %q has no binding", lit.Raw)
	}
	switch b.Kind {
	case symtab.GlobalVariable:
		return withConstant(GetGlobal, Constant{Kind: ConstString, Str: lit.Raw}), nil
	case symtab.LocalVariable:
		return withArg(GetLocal, uint64(b.Slot)), nil
	default:
		return nil, fmt.Errorf("compiler: %q (%s) cannot be used as a value", lit.Raw, b.Kind)
	}
}

func emitAssignment(a *ast.AssignmentExpr) (*Chunk, error) {
	value, err := emitExpr(a.Value)
	if err != nil {
		return nil, err
	}
	b, ok := a.Table.Get(a.Name, a.ScopeDepth)
	if !ok {
		return nil, fmt.Errorf("compiler: %q has no binding", a.Name)
	}
	if b.Kind == symtab.GlobalVariable {
		// DefineGlobal pops the value it stores, so the global is read back
		// with GetGlobal to give the assignment its expression value.
		return merge(value,
			withConstant(DefineGlobal, Constant{Kind: ConstString, Str: a.Name}),
			withConstant(GetGlobal, Constant{Kind: ConstString, Str: a.Name})), nil
	}
	// Local assignment resolves the open question of §9: reuse DefineLocal
	// rather than a dedicated opcode, exactly as the spec's own fix says —
	// DefineLocal's "copy top into slot without popping" contract already
	// gives assignment its expression value for free.
	return merge(value, withArg(DefineLocal, uint64(b.Slot))), nil
}

func emitSequence(s *ast.SequenceExpr) (*Chunk, error) {
	var parts []*Chunk
	for i, item := range s.Items {
		c, err := emitExpr(item)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
		if i < len(s.Items)-1 {
			parts = append(parts, single(Pop))
		}
	}
	return merge(parts...), nil
}

// binaryOpcodes maps the straightforward binary operators onto a single
// opcode. The operators not listed here (!=, <=, >=) are handled
// separately in emitBinary: != lowers to Equal followed by Negate, and
// <= and >= use the dedicated LessOrEqual and GreaterOrEqual opcodes.
var binaryOpcodes = map[token.Token]Opcode{
	token.PLUS:  Add,
	token.MINUS: Sub,
	token.STAR:  Mul,
	token.SLASH: Div,
	token.EQ_EQ: Equal,
	token.LT:    LessThan,
	token.GT:    GreaterThan,
}

func emitBinary(b *ast.BinaryExpr) (*Chunk, error) {
	left, err := emitExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := emitExpr(b.Right)
	if err != nil {
		return nil, err
	}

	// <= and >= have dedicated opcodes (GreaterOrEqual, LessOrEqual) and use
	// them directly rather than composing GreaterThan/LessThan with Negate.
	// != has no dedicated opcode, so it stays as Equal+Negate.
	switch b.Op {
	case token.LT_EQ:
		return merge(left, right, single(LessOrEqual)), nil
	case token.GT_EQ:
		return merge(left, right, single(GreaterOrEqual)), nil
	case token.BANG_EQ:
		return merge(left, right, single(Equal), single(Negate)), nil
	}

	op, ok := binaryOpcodes[b.Op]
	if !ok {
		return nil, fmt.Errorf("compiler: unsupported binary operator %s", b.Op)
	}
	return merge(left, right, single(op)), nil
}

func emitUnary(u *ast.UnaryExpr) (*Chunk, error) {
	right, err := emitExpr(u.Right)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case token.MINUS, token.BANG:
		return merge(right, single(Negate)), nil
	default:
		return nil, fmt.Errorf("compiler: unsupported unary operator %s", u.Op)
	}
}

func emitCall(c *ast.CallExpr) (*Chunk, error) {
	callee, ok := c.Callee.(*ast.LiteralExpr)
	if !ok || callee.Tok != token.IDENT {
		return nil, fmt.Errorf("compiler: call target must be a plain function name")
	}

	var parts []*Chunk
	for _, a := range c.Args {
		ac, err := emitExpr(a)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ac)
	}
	parts = append(parts, withConstant(CallDirect, Constant{Kind: ConstString, Str: callee.Raw}))
	return merge(parts...), nil
}

func emitReturn(r *ast.ReturnExpr) (*Chunk, error) {
	if r.Value == nil {
		return single(Return), nil
	}
	value, err := emitExpr(r.Value)
	if err != nil {
		return nil, err
	}
	return merge(value, single(ReturnValue)), nil
}

// shortJumpMin and shortJumpMax are the i8 range the short jump variants'
// single-byte operand can encode.
const (
	shortJumpMin = -128
	shortJumpMax = 127
)

// forwardJump picks JumpLocal(If False) when dist fits an i8, else the i64
// JumpFar variant. Forward jump targets are measured from right after the
// jump instruction, so dist (the length of the code being skipped) doesn't
// depend on which variant is chosen.
func forwardJump(short, far Opcode, dist int) *Chunk {
	if dist >= shortJumpMin && dist <= shortJumpMax {
		return withArg(short, uint64(int64(int8(dist))))
	}
	return withArg(far, uint64(int64(dist)))
}

// emitIf lowers `if (cond) then (else expr)?`. The conditional jump peeks
// rather than pops its condition (so that a chain of comparisons could, in
// principle, consume it more than once), so both the taken and the
// fall-through path open with an explicit Pop to discard it before
// running their own code.
func emitIf(e *ast.IfExpr) (*Chunk, error) {
	cond, err := emitExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	then, err := emitExpr(e.Then)
	if err != nil {
		return nil, err
	}
	var els *Chunk
	if e.Else != nil {
		els, err = emitExpr(e.Else)
		if err != nil {
			return nil, err
		}
	} else {
		els = emitNone()
	}

	elsePart := merge(single(Pop), els)
	endJump := forwardJump(JumpLocal, JumpFar, elsePart.len())
	thenPart := merge(single(Pop), then, endJump)
	condJump := forwardJump(JumpLocalIfFalse, JumpFarIfFalse, thenPart.len())
	return merge(cond, condJump, thenPart, elsePart), nil
}

// emitLoop lowers `while (predicate)? body`. A backward jump's distance
// depends on the width of the jump instructions themselves (both its own
// and the forward conditional jump's, since both sit between the
// predicate and the backward jump target), so the short/far choice for
// the pair is resolved together rather than one at a time: if either
// would overflow short, both are emitted far.
func emitLoop(e *ast.LoopExpr) (*Chunk, error) {
	var pred *Chunk
	if e.Predicate != nil {
		var err error
		pred, err = emitExpr(e.Predicate)
		if err != nil {
			return nil, err
		}
	} else {
		pred = withConstant(Constant, Constant{Kind: ConstBool, Bool: true})
	}

	bodyVal, err := emitExpr(e.Body)
	if err != nil {
		return nil, err
	}
	// the leading Pop discards the predicate's peeked true; the trailing one
	// discards the body expression's own per-iteration value.
	body := merge(single(Pop), bodyVal, single(Pop))

	tryWidth := func(wide bool) (cond, back *Chunk, ok bool) {
		condOp, backOp := JumpLocalIfFalse, JumpLocal
		width := 2
		if wide {
			condOp, backOp = JumpFarIfFalse, JumpFar
			width = 9
		}
		backDist := -(pred.len() + width + body.len() + width)
		condDist := body.len() + width
		if !wide && (backDist < shortJumpMin || backDist > shortJumpMax || condDist < shortJumpMin || condDist > shortJumpMax) {
			return nil, nil, false
		}
		return withArg(condOp, uint64(int64(condDist))), withArg(backOp, uint64(int64(backDist))), true
	}

	condJump, backJump, ok := tryWidth(false)
	if !ok {
		condJump, backJump, _ = tryWidth(true)
	}

	// the jump lands here with the predicate's peeked false still on the
	// stack; Pop it before pushing the loop's own None result.
	return merge(pred, condJump, body, backJump, single(Pop), emitNone()), nil
}
