// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

//go:generate go tool stringer -linecomment -type=AsmOp
//go:generate go tool stringer -linecomment -type=Terminal

// AsmOp identifies an expression operator, reported after its operands
// have been parsed.
type AsmOp int

const (
	OP_OR  = AsmOp(0)  // |
	OP_XOR = AsmOp(1)  // ^
	OP_AND = AsmOp(2)  // &
	OP_LSH = AsmOp(3)  // <<
	OP_RSH = AsmOp(4)  // >>
	OP_ADD = AsmOp(5)  // +
	OP_SUB = AsmOp(6)  // -
	OP_MUL = AsmOp(7)  // *
	OP_DIV = AsmOp(8)  // /
	OP_NEG = AsmOp(9)  // unary -
	OP_NOT = AsmOp(10) // ~
)

// Terminal identifies a leaf of an expression. Some token kinds are
// ambiguous at the lexical level, so the parser reports an explicit
// terminal type alongside the token.
type Terminal int

const (
	TERM_HEX      = Terminal(0)
	TERM_DEC      = Terminal(1)
	TERM_OCT      = Terminal(2)
	TERM_BIN      = Terminal(3)
	TERM_FLT      = Terminal(4)
	TERM_STR      = Terminal(5)
	TERM_ID       = Terminal(6)
	TERM_GPR      = Terminal(7)
	TERM_FPR      = Terminal(8)
	TERM_SPR      = Terminal(9)
	TERM_CR_FIELD = Terminal(10)
	TERM_LT       = Terminal(11)
	TERM_GT       = Terminal(12)
	TERM_EQ       = Terminal(13)
	TERM_SO       = Terminal(14)
	TERM_DOT      = Terminal(15)
)

// ParenKind distinguishes grouping parens from the backtick pair that
// converts an absolute value to an instruction-relative one.
type ParenKind int

const (
	PAREN_NORMAL   = ParenKind(0)
	PAREN_REL_CONV = ParenKind(1)
)

// Visitor receives callouts at each point of interest while a program is
// parsed. Nonterminal Pre callouts occur before the head of the
// nonterminal is consumed and Post callouts after it has been fully
// parsed; operator callouts occur after the operands; token callouts
// occur before the token is consumed. Implementations embed NoopVisitor
// and override what they need.
type Visitor interface {
	// SetOwner hands the visitor the running parse, for error emission
	// and source position queries. It is reset to nil when the parse
	// returns.
	SetOwner(state *ParseState)
	// ForwardError delivers the parse's failure to the visitor.
	ForwardError(err AssemblerError)

	// PostParseAction runs after a successful parse, before the parse
	// state is torn down.
	PostParseAction()

	DirectivePre(directive Directive)
	DirectivePost(directive Directive)
	InstructionPre(info ParseInfo, extended bool)
	InstructionPost(info ParseInfo, extended bool)
	OperandPre()
	OperandPost()
	ResolvedExprPre()
	ResolvedExprPost()

	Operator(op AsmOp)

	Terminal(term Terminal, tok Token)
	HiAddr(id string)
	LoAddr(id string)
	OpenParen(kind ParenKind)
	CloseParen(kind ParenKind)
	Error()
	LabelDecl(name string)
	VarDecl(name string)
}

// NoopVisitor implements every Visitor callout as a no-op, keeping the
// owner handle and any forwarded error.
type NoopVisitor struct {
	Owner        *ParseState
	ForwardedErr *AssemblerError
}

func (v *NoopVisitor) SetOwner(state *ParseState)           { v.Owner = state }
func (v *NoopVisitor) ForwardError(err AssemblerError)      { v.ForwardedErr = &err }
func (v *NoopVisitor) PostParseAction()                     {}
func (v *NoopVisitor) DirectivePre(Directive)               {}
func (v *NoopVisitor) DirectivePost(Directive)              {}
func (v *NoopVisitor) InstructionPre(ParseInfo, bool)       {}
func (v *NoopVisitor) InstructionPost(ParseInfo, bool)      {}
func (v *NoopVisitor) OperandPre()                          {}
func (v *NoopVisitor) OperandPost()                         {}
func (v *NoopVisitor) ResolvedExprPre()                     {}
func (v *NoopVisitor) ResolvedExprPost()                    {}
func (v *NoopVisitor) Operator(AsmOp)                       {}
func (v *NoopVisitor) Terminal(Terminal, Token)             {}
func (v *NoopVisitor) HiAddr(string)                        {}
func (v *NoopVisitor) LoAddr(string)                        {}
func (v *NoopVisitor) OpenParen(ParenKind)                  {}
func (v *NoopVisitor) CloseParen(ParenKind)                 {}
func (v *NoopVisitor) Error()                               {}
func (v *NoopVisitor) LabelDecl(string)                     {}
func (v *NoopVisitor) VarDecl(string)                       {}
