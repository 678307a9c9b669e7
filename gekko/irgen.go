// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

import (
	"math"
)

// irInstruction records one parsed instruction: which descriptor row and
// variant it selected, and the slice of the shared operand pool holding
// its operand values.
type irInstruction struct {
	mnemonicIndex int
	opIndex       int
	opCount       int
	rawText       string
	lineNumber    int
	extended      bool
}

// A block is a run of chunks laid out back to back from a fixed base
// address. Chunks of the same variety merge with the previous chunk.
type chunk interface {
	byteSize() uint32
}

type instChunk []irInstruction
type byteChunk []byte
type padChunk uint32

func (c *instChunk) byteSize() uint32 { return uint32(len(*c)) * 4 }
func (c *byteChunk) byteSize() uint32 { return uint32(len(*c)) }
func (c *padChunk) byteSize() uint32  { return uint32(*c) }

type irBlock struct {
	chunks  []chunk
	address uint32
}

func (b *irBlock) endAddress() uint32 {
	addr := b.address
	for _, c := range b.chunks {
		addr += c.byteSize()
	}
	return addr
}

func (b *irBlock) instTail() *instChunk {
	if n := len(b.chunks); n > 0 {
		if c, ok := b.chunks[n-1].(*instChunk); ok {
			return c
		}
	}
	c := &instChunk{}
	b.chunks = append(b.chunks, c)
	return c
}

func (b *irBlock) byteTail() *byteChunk {
	if n := len(b.chunks); n > 0 {
		if c, ok := b.chunks[n-1].(*byteChunk); ok {
			return c
		}
	}
	c := &byteChunk{}
	b.chunks = append(b.chunks, c)
	return c
}

func (b *irBlock) padTail() *padChunk {
	if n := len(b.chunks); n > 0 {
		if c, ok := b.chunks[n-1].(*padChunk); ok {
			return c
		}
	}
	c := new(padChunk)
	b.chunks = append(b.chunks, c)
	return c
}

// irProgram is the output of the first assembly pass: address-tagged
// blocks of instructions, raw bytes, and padding, plus the operand pool
// every instruction indexes into. Operand values are filled in by the
// fixup pass once all labels are known.
type irProgram struct {
	blocks      []*irBlock
	operandPool []taggedOperand
}

type evalKind int

const (
	evalU8 = evalKind(iota)
	evalU16
	evalU32
	evalU64
	evalF32
	evalF64
)

// evalStack is a single-width value stack for directive arguments. The
// width is chosen by the directive, and every push and operation
// truncates to it.
type evalStack struct {
	kind   evalKind
	ints   []uint64
	floats []float64
}

func (s *evalStack) isFloat() bool {
	return s.kind == evalF32 || s.kind == evalF64
}

func (s *evalStack) widthMask() uint64 {
	switch s.kind {
	case evalU8:
		return 0xff
	case evalU16:
		return 0xffff
	case evalU32:
		return 0xffffffff
	default:
		return ^uint64(0)
	}
}

func (s *evalStack) pushInt(val uint64) {
	s.ints = append(s.ints, val&s.widthMask())
}

func (s *evalStack) pushFloat(val float64) {
	if s.kind == evalF32 {
		val = float64(float32(val))
	}
	s.floats = append(s.floats, val)
}

func (s *evalStack) reset(kind evalKind) {
	s.kind = kind
	s.ints = s.ints[:0]
	s.floats = s.floats[:0]
}

// haVal computes the high adjusted half of an address, carrying bit 15
// up so a sign-extending low half reconstructs the full value.
func haVal(val uint32) uint32 {
	return (val>>16 + val>>15&1) & 0xffff
}

func loVal(val uint32) uint32 {
	return val & 0xffff
}

// irBuilder is the Visitor that lowers a parse into an irProgram.
// Directive arguments evaluate immediately on a typed value stack, since
// every symbol they use must already be defined. Instruction operands
// instead build deferred evaluation thunks, which run in pool order
// after the whole program has parsed and all labels are bound.
type irBuilder struct {
	NoopVisitor
	result      *irProgram
	activeBlock *irBlock

	buildInst        irInstruction
	operandScanBegin int

	labels    map[string]uint32
	constants map[string]uint64
	activeVar string

	relMode         bool
	fixupStack      []func() uint32
	operandFixups   []func() uint32
	operandStrStart int

	stack           evalStack
	stringLit       string
	activeDirective Directive
}

func newIRBuilder(result *irProgram, baseAddress uint32) *irBuilder {
	p := &irBuilder{
		result:    result,
		labels:    map[string]uint32{},
		constants: map[string]uint64{},
	}
	p.activeBlock = &irBlock{address: baseAddress}
	result.blocks = append(result.blocks, p.activeBlock)
	return p
}

// parseToIR runs the first assembly pass over source, producing blocks
// with all operand values resolved.
func parseToIR(source string, baseAddress uint32) (*irProgram, error) {
	result := &irProgram{}
	builder := newIRBuilder(result, baseAddress)

	ParseWithVisitor(source, builder)

	if builder.ForwardedErr != nil {
		return nil, *builder.ForwardedErr
	}
	return result, nil
}

func (p *irBuilder) currentAddress() uint32 {
	return p.activeBlock.endAddress()
}

func (p *irBuilder) defined(name string) bool {
	if _, ok := p.labels[name]; ok {
		return true
	}
	_, ok := p.constants[name]
	return ok
}


///////////////
// CALLOUTS  //
///////////////


func (p *irBuilder) DirectivePre(directive Directive) {
	p.relMode = false
	p.activeDirective = directive

	switch directive {
	case DIRECTIVE_BYTE:
		p.stack.reset(evalU8)
	case DIRECTIVE_2BYTE:
		p.stack.reset(evalU16)
	case DIRECTIVE_4BYTE, DIRECTIVE_LOCATE, DIRECTIVE_PADALIGN,
		DIRECTIVE_ALIGN, DIRECTIVE_ZEROS, DIRECTIVE_SKIP:
		p.stack.reset(evalU32)
	case DIRECTIVE_8BYTE, DIRECTIVE_DEFVAR:
		p.stack.reset(evalU64)
	case DIRECTIVE_FLOAT:
		p.stack.reset(evalF32)
	case DIRECTIVE_DOUBLE:
		p.stack.reset(evalF64)
	}
}

func (p *irBuilder) DirectivePost(directive Directive) {
	switch directive {
	case DIRECTIVE_DEFVAR:
		p.constants[p.activeVar] = p.stack.ints[len(p.stack.ints)-1]
		p.activeVar = ""
	case DIRECTIVE_LOCATE:
		p.startBlock(uint32(p.stack.ints[len(p.stack.ints)-1]))
	case DIRECTIVE_ZEROS:
		p.padSpace(uint32(p.stack.ints[len(p.stack.ints)-1]))
	case DIRECTIVE_SKIP:
		p.startBlock(p.currentAddress() + uint32(p.stack.ints[len(p.stack.ints)-1]))
	case DIRECTIVE_PADALIGN:
		p.padAlign(uint32(p.stack.ints[len(p.stack.ints)-1]))
	case DIRECTIVE_ALIGN:
		p.startBlockAlign(uint32(p.stack.ints[len(p.stack.ints)-1]))
	case DIRECTIVE_ASCII:
		p.addStringBytes(p.stringLit, false)
	case DIRECTIVE_ASCIZ:
		p.addStringBytes(p.stringLit, true)
	}
}

func (p *irBuilder) InstructionPre(info ParseInfo, extended bool) {
	p.relMode = true
	lex := p.Owner.Lexer()
	p.buildInst = irInstruction{
		mnemonicIndex: info.index,
		rawText:       lex.CurrentLine(),
		lineNumber:    lex.LineNumber(),
		extended:      extended,
	}
	p.operandScanBegin = len(p.result.operandPool)
}

func (p *irBuilder) InstructionPost(ParseInfo, bool) {
	p.buildInst.opIndex = p.operandScanBegin
	p.buildInst.opCount = len(p.result.operandPool) - p.operandScanBegin
	tail := p.activeBlock.instTail()
	*tail = append(*tail, p.buildInst)
	p.operandScanBegin = 0
}

func (p *irBuilder) OperandPre() {
	p.operandStrStart = p.Owner.Lexer().ColNumber()
}

func (p *irBuilder) OperandPost() {
	p.saveOperandFixup(p.operandStrStart, p.Owner.Lexer().ColNumber())
}

func (p *irBuilder) ResolvedExprPost() {
	switch p.activeDirective {
	case DIRECTIVE_BYTE, DIRECTIVE_2BYTE, DIRECTIVE_4BYTE, DIRECTIVE_8BYTE,
		DIRECTIVE_FLOAT, DIRECTIVE_DOUBLE:
		p.flushStackBytes()
	}
}

func (p *irBuilder) Operator(op AsmOp) {
	if p.relMode {
		p.evalOperatorRel(op)
	} else {
		p.evalOperatorAbs(op)
	}
}

func (p *irBuilder) Terminal(term Terminal, tok Token) {
	if term == TERM_STR {
		p.stringLit = tok.Text
	} else if p.relMode {
		p.evalTerminalRel(term, tok)
	} else {
		p.evalTerminalAbs(term, tok)
	}
}

func (p *irBuilder) HiAddr(id string) {
	if p.relMode {
		p.addSymbolResolve(id, true)
		// Instruction operands take the half sign-extended, so the signed
		// immediate of addis/lis accepts halves of 0x8000 and up.
		p.addUnaryEvaluator(func(val uint32) uint32 { return uint32(int32(int16(haVal(val)))) })
		return
	}
	val, ok := p.lookupSymbol(id)
	if !ok {
		p.Owner.EmitErrorHere(f("Undefined reference to Label/Constant '%v'", id))
		return
	}
	p.stack.pushInt(uint64(haVal(uint32(val))))
}

func (p *irBuilder) LoAddr(id string) {
	if p.relMode {
		p.addSymbolResolve(id, true)
		p.addUnaryEvaluator(loVal)
		return
	}
	val, ok := p.lookupSymbol(id)
	if !ok {
		p.Owner.EmitErrorHere(f("Undefined reference to Label/Constant '%v'", id))
		return
	}
	p.stack.pushInt(uint64(loVal(uint32(val))))
}

func (p *irBuilder) CloseParen(kind ParenKind) {
	if kind != PAREN_REL_CONV {
		return
	}
	if p.relMode {
		p.addAbsoluteAddressConv()
	} else {
		p.stack.pushInt(uint64(p.currentAddress()))
		p.evalOperatorAbs(OP_SUB)
	}
}

func (p *irBuilder) LabelDecl(name string) {
	if p.defined(name) {
		p.Owner.EmitErrorHere(f("Label/Constant %v is already defined", name))
		return
	}
	p.labels[name] = p.activeBlock.endAddress()
}

func (p *irBuilder) VarDecl(name string) {
	if p.defined(name) {
		p.Owner.EmitErrorHere(f("Label/Constant %v is already defined", name))
		return
	}
	p.constants[name] = 0
	p.activeVar = name
}

func (p *irBuilder) PostParseAction() {
	p.runFixups()
}


/////////////
// HELPERS //
/////////////


func (p *irBuilder) lookupSymbol(name string) (uint64, bool) {
	if addr, ok := p.labels[name]; ok {
		return uint64(addr), true
	}
	val, ok := p.constants[name]
	return val, ok
}

func (p *irBuilder) startBlock(address uint32) {
	p.activeBlock = &irBlock{address: address}
	p.result.blocks = append(p.result.blocks, p.activeBlock)
}

func (p *irBuilder) startBlockAlign(bits uint32) {
	alignMask := uint32(1)<<bits - 1
	currentAddr := p.activeBlock.endAddress()
	if currentAddr&alignMask != 0 {
		p.startBlock(uint32(1)<<bits + currentAddr&^alignMask)
	}
}

func (p *irBuilder) padAlign(bits uint32) {
	alignMask := uint32(1)<<bits - 1
	currentAddr := p.activeBlock.endAddress()
	if currentAddr&alignMask != 0 {
		*p.activeBlock.padTail() += padChunk(uint32(1)<<bits - currentAddr&alignMask)
	}
}

func (p *irBuilder) padSpace(space uint32) {
	*p.activeBlock.padTail() += padChunk(space)
}

func (p *irBuilder) addStringBytes(literal string, nullTerm bool) {
	tail := p.activeBlock.byteTail()
	*tail = append(*tail, ConvertStringLiteral(literal)...)
	if nullTerm {
		*tail = append(*tail, 0)
	}
}

func (p *irBuilder) addIntBytes(val uint64, size int) {
	tail := p.activeBlock.byteTail()
	for i := size - 1; i >= 0; i-- {
		*tail = append(*tail, byte(val>>(8*i)))
	}
}

// flushStackBytes drains the value stack into the active byte chunk,
// big endian, at the stack's element width.
func (p *irBuilder) flushStackBytes() {
	switch p.stack.kind {
	case evalU8:
		for _, v := range p.stack.ints {
			p.addIntBytes(v, 1)
		}
	case evalU16:
		for _, v := range p.stack.ints {
			p.addIntBytes(v, 2)
		}
	case evalU32:
		for _, v := range p.stack.ints {
			p.addIntBytes(v, 4)
		}
	case evalU64:
		for _, v := range p.stack.ints {
			p.addIntBytes(v, 8)
		}
	case evalF32:
		for _, v := range p.stack.floats {
			p.addIntBytes(uint64(math.Float32bits(float32(v))), 4)
		}
	case evalF64:
		for _, v := range p.stack.floats {
			p.addIntBytes(math.Float64bits(v), 8)
		}
	}
	p.stack.ints = p.stack.ints[:0]
	p.stack.floats = p.stack.floats[:0]
}


///////////////////////
// DEFERRED OPERANDS //
///////////////////////


func (p *irBuilder) addLiteral(lit uint32) {
	p.fixupStack = append(p.fixupStack, func() uint32 { return lit })
}

func (p *irBuilder) addUnaryEvaluator(evaluator func(uint32) uint32) {
	top := len(p.fixupStack) - 1
	sub := p.fixupStack[top]
	p.fixupStack[top] = func() uint32 { return evaluator(sub()) }
}

func (p *irBuilder) addBinaryEvaluator(evaluator func(uint32, uint32) uint32) {
	top := len(p.fixupStack) - 1
	rhs := p.fixupStack[top]
	lhs := p.fixupStack[top-1]
	p.fixupStack = p.fixupStack[:top]
	p.fixupStack[top-1] = func() uint32 { return evaluator(lhs(), rhs()) }
}

// addAbsoluteAddressConv rewrites the stack top to be relative to the
// address of the instruction under construction.
func (p *irBuilder) addAbsoluteAddressConv() {
	instAddress := p.activeBlock.endAddress()
	p.addUnaryEvaluator(func(val uint32) uint32 { return val - instAddress })
}

// addSymbolResolve pushes a thunk that looks the symbol up when the
// fixup pass runs. Labels found then resolve relative to the address
// this expression was parsed at unless absolute is set; constants
// always resolve to their value. A failed lookup reports back at the
// symbol's source position.
func (p *irBuilder) addSymbolResolve(sym string, absolute bool) {
	sourceAddress := p.activeBlock.endAddress()
	lex := p.Owner.Lexer()
	errOnFail := AssemblerError{
		Message:    f("Unresolved symbol '%v'", sym),
		SourceLine: lex.CurrentLine(),
		Line:       lex.LineNumber(),
		Col:        lex.ColNumber(),
		Len:        len(sym),
	}

	p.fixupStack = append(p.fixupStack, func() uint32 {
		if addr, ok := p.labels[sym]; ok {
			if absolute {
				return addr
			}
			return addr - sourceAddress
		}
		if val, ok := p.constants[sym]; ok {
			return uint32(val)
		}
		p.Owner.err = &errOnFail
		return 0
	})
}

func (p *irBuilder) saveOperandFixup(strLeft, strRight int) {
	top := len(p.fixupStack) - 1
	p.operandFixups = append(p.operandFixups, p.fixupStack[top])
	p.fixupStack = p.fixupStack[:top]
	p.result.operandPool = append(p.result.operandPool,
		taggedOperand{span: Span{Col: strLeft, Len: strRight - strLeft}})
}

func (p *irBuilder) runFixups() {
	for i, fixup := range p.operandFixups {
		p.result.operandPool[i].value = fixup()
		if p.Owner.err != nil {
			return
		}
	}
}


////////////////
// EVALUATION //
////////////////


func (p *irBuilder) evalOperatorRel(op AsmOp) {
	switch op {
	case OP_OR:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs | rhs })
	case OP_XOR:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs ^ rhs })
	case OP_AND:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs & rhs })
	case OP_LSH:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs << (rhs & 31) })
	case OP_RSH:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs >> (rhs & 31) })
	case OP_ADD:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs + rhs })
	case OP_SUB:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs - rhs })
	case OP_MUL:
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 { return lhs * rhs })
	case OP_DIV:
		errOnFail := p.errHere(f("Division by zero"))
		p.addBinaryEvaluator(func(lhs, rhs uint32) uint32 {
			if rhs == 0 {
				p.Owner.err = &errOnFail
				return 0
			}
			return lhs / rhs
		})
	case OP_NEG:
		p.addUnaryEvaluator(func(val uint32) uint32 { return -val })
	case OP_NOT:
		p.addUnaryEvaluator(func(val uint32) uint32 { return ^val })
	}
}

// errHere snapshots an error at the lexer's current position, for thunks
// that may fail after the parse has moved on.
func (p *irBuilder) errHere(message string) AssemblerError {
	lex := p.Owner.Lexer()
	return AssemblerError{
		Message:    message,
		SourceLine: lex.CurrentLine(),
		Line:       lex.LineNumber(),
		Col:        lex.ColNumber(),
	}
}

func (p *irBuilder) evalOperatorAbs(op AsmOp) {
	s := &p.stack
	if s.isFloat() {
		p.evalFloatOperator(op)
		return
	}

	if op == OP_NEG || op == OP_NOT {
		top := len(s.ints) - 1
		if op == OP_NEG {
			s.ints[top] = -s.ints[top] & s.widthMask()
		} else {
			s.ints[top] = ^s.ints[top] & s.widthMask()
		}
		return
	}

	top := len(s.ints) - 1
	lhs, rhs := s.ints[top-1], s.ints[top]
	s.ints = s.ints[:top]

	var result uint64
	switch op {
	case OP_OR:
		result = lhs | rhs
	case OP_XOR:
		result = lhs ^ rhs
	case OP_AND:
		result = lhs & rhs
	case OP_LSH:
		result = lhs << (rhs & 63)
	case OP_RSH:
		result = lhs >> (rhs & 63)
	case OP_ADD:
		result = lhs + rhs
	case OP_SUB:
		result = lhs - rhs
	case OP_MUL:
		result = lhs * rhs
	case OP_DIV:
		if rhs == 0 {
			p.Owner.EmitErrorHere(f("Division by zero"))
			s.ints = s.ints[:top-1]
			return
		}
		result = lhs / rhs
	}
	s.ints[top-1] = result & s.widthMask()
}

func (p *irBuilder) evalFloatOperator(op AsmOp) {
	s := &p.stack
	switch op {
	case OP_NEG:
		top := len(s.floats) - 1
		s.floats[top] = -s.floats[top]
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		top := len(s.floats) - 1
		lhs, rhs := s.floats[top-1], s.floats[top]
		s.floats = s.floats[:top]
		var result float64
		switch op {
		case OP_ADD:
			result = lhs + rhs
		case OP_SUB:
			result = lhs - rhs
		case OP_MUL:
			result = lhs * rhs
		case OP_DIV:
			result = lhs / rhs
		}
		if s.kind == evalF32 {
			result = float64(float32(result))
		}
		s.floats[top-1] = result
	default:
		p.Owner.EmitErrorHere(f("Invalid operation on a floating point value"))
	}
}

func (p *irBuilder) evalTerminalRel(term Terminal, tok Token) {
	switch term {
	case TERM_HEX, TERM_DEC, TERM_OCT, TERM_BIN, TERM_GPR, TERM_FPR,
		TERM_SPR, TERM_CR_FIELD, TERM_LT, TERM_GT, TERM_EQ, TERM_SO:
		val, _ := EvalToken[uint32](tok)
		p.addLiteral(val)

	case TERM_DOT:
		p.addLiteral(p.currentAddress())

	case TERM_ID:
		// Labels always defer, so references encode the same whether the
		// label is defined before or after this instruction.
		if val, ok := p.constants[tok.Text]; ok {
			p.addLiteral(uint32(val))
		} else {
			p.addSymbolResolve(tok.Text, false)
		}
	}
}

func (p *irBuilder) evalTerminalAbs(term Terminal, tok Token) {
	if p.stack.isFloat() {
		switch p.stack.kind {
		case evalF32:
			val, _ := EvalToken[float32](tok)
			p.stack.pushFloat(float64(val))
		case evalF64:
			val, _ := EvalToken[float64](tok)
			p.stack.pushFloat(val)
		}
		return
	}

	switch term {
	case TERM_HEX, TERM_DEC, TERM_OCT, TERM_BIN, TERM_GPR, TERM_FPR,
		TERM_SPR, TERM_CR_FIELD, TERM_LT, TERM_GT, TERM_EQ, TERM_SO:
		val, _ := EvalToken[uint64](tok)
		p.stack.pushInt(val)

	case TERM_DOT:
		p.stack.pushInt(uint64(p.currentAddress()))

	case TERM_ID:
		val, ok := p.lookupSymbol(tok.Text)
		if !ok {
			p.Owner.EmitErrorHere(f("Undefined reference to Label/Constant '%v'", tok.ValStr()))
			return
		}
		p.stack.pushInt(val)
	}
}
