// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

// ParseState drives the recursive descent over a source string,
// dispatching Visitor callouts as points of interest are reached. The
// first error stops the parse.
type ParseState struct {
	lexer   *Lexer
	visitor Visitor
	err     *AssemblerError
	eof     bool
}

// ParseWithVisitor parses source, reporting every point of interest to
// v. On failure the visitor receives Error followed by the forwarded
// AssemblerError; on success it receives PostParseAction, which may
// itself fail.
func ParseWithVisitor(source string, v Visitor) {
	state := &ParseState{lexer: NewLexer(source), visitor: v}
	v.SetOwner(state)

	state.parseProgram()

	if state.err == nil {
		v.PostParseAction()
	}
	if state.err != nil {
		v.Error()
		v.ForwardError(*state.err)
	}

	v.SetOwner(nil)
}

// Lexer exposes the underlying lexer for source position queries.
func (ps *ParseState) Lexer() *Lexer { return ps.lexer }

func (ps *ParseState) failed() bool { return ps.err != nil }

func (ps *ParseState) hasToken(kind TokenKind) bool {
	return ps.lexer.LookaheadKind() == kind
}

func (ps *ParseState) parseToken(kind TokenKind) {
	tok := ps.lexer.Lookahead()
	if tok.Kind == kind {
		ps.lexer.Eat()
	} else {
		ps.EmitErrorHere(f("Expected '%v' but found '%v'", kind, tok.ValStr()))
	}
}

// EmitErrorHere records the parse's failure at the next unconsumed
// token. Invalid tokens override the message with their own lex failure
// reason and region.
func (ps *ParseState) EmitErrorHere(message string) {
	cur := ps.lexer.Lookahead()
	if cur.Kind == TOKEN_INVALID {
		ps.err = &AssemblerError{
			Message:    cur.InvalidReason,
			SourceLine: ps.lexer.CurrentLine(),
			Line:       ps.lexer.LineNumber(),
			Col:        ps.lexer.ColNumber() + cur.InvalidSpan.Col,
			Len:        cur.InvalidSpan.Len,
		}
	} else {
		ps.err = &AssemblerError{
			Message:    message,
			SourceLine: ps.lexer.CurrentLine(),
			Line:       ps.lexer.LineNumber(),
			Col:        ps.lexer.ColNumber(),
			Len:        len(cur.Text),
		}
	}
}

func matchOperandFirst(tok Token) bool {
	switch tok.Kind {
	case TOKEN_MINUS, TOKEN_TILDE, TOKEN_LPAREN, TOKEN_GRAVE, TOKEN_IDENTIFIER,
		TOKEN_DECIMAL, TOKEN_OCTAL, TOKEN_HEX, TOKEN_BINARY, TOKEN_DOT:
		return true
	}
	return false
}

func (ps *ParseState) parseImm() {
	tok := ps.lexer.Lookahead()
	switch tok.Kind {
	case TOKEN_HEX:
		ps.visitor.Terminal(TERM_HEX, tok)
	case TOKEN_DECIMAL:
		ps.visitor.Terminal(TERM_DEC, tok)
	case TOKEN_OCTAL:
		ps.visitor.Terminal(TERM_OCT, tok)
	case TOKEN_BINARY:
		ps.visitor.Terminal(TERM_BIN, tok)
	default:
		ps.EmitErrorHere(f("Invalid %v with value '%v'", tok.Kind, tok.ValStr()))
		return
	}
	if ps.failed() {
		return
	}
	ps.lexer.Eat()
}

func (ps *ParseState) parseId() {
	tok := ps.lexer.Lookahead()
	if tok.Kind != TOKEN_IDENTIFIER {
		ps.EmitErrorHere(f("Expected an identifier, but found '%v'", tok.ValStr()))
		return
	}
	ps.visitor.Terminal(TERM_ID, tok)
	if ps.failed() {
		return
	}
	ps.lexer.Eat()
}

// parseIdLocation handles identifiers with an optional @ha or @l
// address-half selector.
func (ps *ParseState) parseIdLocation() {
	var toks [3]Token
	ps.lexer.LookaheadN(toks[:])

	if toks[1].Kind == TOKEN_AT {
		switch toks[2].Text {
		case "ha":
			ps.visitor.HiAddr(toks[0].Text)
			if ps.failed() {
				return
			}
			ps.lexer.EatN(3)
			return
		case "l":
			ps.visitor.LoAddr(toks[0].Text)
			if ps.failed() {
				return
			}
			ps.lexer.EatN(3)
			return
		}
	}

	ps.parseId()
}

func (ps *ParseState) parsePpcBuiltin() {
	tok := ps.lexer.Lookahead()
	switch tok.Kind {
	case TOKEN_GPR:
		ps.visitor.Terminal(TERM_GPR, tok)
	case TOKEN_FPR:
		ps.visitor.Terminal(TERM_FPR, tok)
	case TOKEN_SPR:
		ps.visitor.Terminal(TERM_SPR, tok)
	case TOKEN_CR_FIELD:
		ps.visitor.Terminal(TERM_CR_FIELD, tok)
	case TOKEN_LT:
		ps.visitor.Terminal(TERM_LT, tok)
	case TOKEN_GT:
		ps.visitor.Terminal(TERM_GT, tok)
	case TOKEN_EQ:
		ps.visitor.Terminal(TERM_EQ, tok)
	case TOKEN_SO:
		ps.visitor.Terminal(TERM_SO, tok)
	default:
		ps.EmitErrorHere(f("Unexpected token '%v' in ppc builtin", tok.ValStr()))
	}
	if ps.failed() {
		return
	}
	ps.lexer.Eat()
}

func (ps *ParseState) parseBaseexpr() {
	switch ps.lexer.LookaheadKind() {
	case TOKEN_HEX, TOKEN_DECIMAL, TOKEN_OCTAL, TOKEN_BINARY:
		ps.parseImm()

	case TOKEN_IDENTIFIER:
		ps.parseIdLocation()

	case TOKEN_GPR, TOKEN_FPR, TOKEN_SPR, TOKEN_CR_FIELD,
		TOKEN_LT, TOKEN_GT, TOKEN_EQ, TOKEN_SO:
		ps.parsePpcBuiltin()

	case TOKEN_DOT:
		ps.visitor.Terminal(TERM_DOT, ps.lexer.Lookahead())
		if ps.failed() {
			return
		}
		ps.lexer.Eat()

	default:
		ps.EmitErrorHere(f("Unexpected token '%v' in expression", ps.lexer.Lookahead().ValStr()))
	}
}

func (ps *ParseState) parseParen() {
	switch {
	case ps.hasToken(TOKEN_LPAREN):
		ps.visitor.OpenParen(PAREN_NORMAL)
		if ps.failed() {
			return
		}

		ps.lexer.Eat()
		ps.parseBitor()
		if ps.failed() {
			return
		}

		if ps.hasToken(TOKEN_RPAREN) {
			ps.visitor.CloseParen(PAREN_NORMAL)
		}
		ps.parseToken(TOKEN_RPAREN)

	case ps.hasToken(TOKEN_GRAVE):
		ps.visitor.OpenParen(PAREN_REL_CONV)

		ps.lexer.Eat()
		ps.parseBitor()
		if ps.failed() {
			return
		}

		if ps.hasToken(TOKEN_GRAVE) {
			ps.visitor.CloseParen(PAREN_REL_CONV)
		}
		ps.parseToken(TOKEN_GRAVE)

	default:
		ps.parseBaseexpr()
	}
}

func (ps *ParseState) parseUnary() {
	kind := ps.lexer.LookaheadKind()
	if kind != TOKEN_MINUS && kind != TOKEN_TILDE {
		ps.parseParen()
		return
	}

	ps.lexer.Eat()
	ps.parseUnary()
	if ps.failed() {
		return
	}

	if kind == TOKEN_MINUS {
		ps.visitor.Operator(OP_NEG)
	} else {
		ps.visitor.Operator(OP_NOT)
	}
}

func (ps *ParseState) parseMultiplication() {
	ps.parseUnary()
	if ps.failed() {
		return
	}

	for kind := ps.lexer.LookaheadKind(); kind == TOKEN_STAR || kind == TOKEN_SLASH; kind = ps.lexer.LookaheadKind() {
		ps.lexer.Eat()
		ps.parseUnary()
		if ps.failed() {
			return
		}

		if kind == TOKEN_STAR {
			ps.visitor.Operator(OP_MUL)
		} else {
			ps.visitor.Operator(OP_DIV)
		}
	}
}

func (ps *ParseState) parseAddition() {
	ps.parseMultiplication()
	if ps.failed() {
		return
	}

	for kind := ps.lexer.LookaheadKind(); kind == TOKEN_PLUS || kind == TOKEN_MINUS; kind = ps.lexer.LookaheadKind() {
		ps.lexer.Eat()
		ps.parseMultiplication()
		if ps.failed() {
			return
		}

		if kind == TOKEN_PLUS {
			ps.visitor.Operator(OP_ADD)
		} else {
			ps.visitor.Operator(OP_SUB)
		}
	}
}

func (ps *ParseState) parseShift() {
	ps.parseAddition()
	if ps.failed() {
		return
	}

	for kind := ps.lexer.LookaheadKind(); kind == TOKEN_LSH || kind == TOKEN_RSH; kind = ps.lexer.LookaheadKind() {
		ps.lexer.Eat()
		ps.parseAddition()
		if ps.failed() {
			return
		}

		if kind == TOKEN_LSH {
			ps.visitor.Operator(OP_LSH)
		} else {
			ps.visitor.Operator(OP_RSH)
		}
	}
}

func (ps *ParseState) parseBitand() {
	ps.parseShift()
	if ps.failed() {
		return
	}

	for ps.hasToken(TOKEN_AMPERSAND) {
		ps.lexer.Eat()
		ps.parseShift()
		if ps.failed() {
			return
		}

		ps.visitor.Operator(OP_AND)
	}
}

func (ps *ParseState) parseBitxor() {
	ps.parseBitand()
	if ps.failed() {
		return
	}

	for ps.hasToken(TOKEN_CARET) {
		ps.lexer.Eat()
		ps.parseBitand()
		if ps.failed() {
			return
		}

		ps.visitor.Operator(OP_XOR)
	}
}

func (ps *ParseState) parseBitor() {
	ps.parseBitxor()
	if ps.failed() {
		return
	}

	for ps.hasToken(TOKEN_PIPE) {
		ps.lexer.Eat()
		ps.parseBitxor()
		if ps.failed() {
			return
		}

		ps.visitor.Operator(OP_OR)
	}
}

func (ps *ParseState) parseOperand() {
	ps.visitor.OperandPre()
	ps.parseBitor()
	if ps.failed() {
		return
	}
	ps.visitor.OperandPost()
}

type parseStep int

const (
	stepOperand = parseStep(0)
	stepComma   = parseStep(1)
	stepLparen  = parseStep(2)
	stepRparen  = parseStep(3)
	// stepOptComma stops the operand list cleanly when no comma follows.
	stepOptComma = parseStep(4)
)

var parseAlgSteps = map[parseAlg][]parseStep{
	algOp1:    {stepOperand},
	algOp1Or2: {stepOperand, stepOptComma, stepOperand},
	algOp2Or3: {stepOperand, stepComma, stepOperand, stepOptComma, stepOperand},
	algOp1Off1: {stepOperand, stepComma, stepOperand,
		stepLparen, stepOperand, stepRparen},
	algOp2: {stepOperand, stepComma, stepOperand},
	algOp3: {stepOperand, stepComma, stepOperand, stepComma, stepOperand},
	algOp4: {stepOperand, stepComma, stepOperand, stepComma, stepOperand,
		stepComma, stepOperand},
	algOp5: {stepOperand, stepComma, stepOperand, stepComma, stepOperand,
		stepComma, stepOperand, stepComma, stepOperand},
	algOp1Off1Op2: {stepOperand, stepComma, stepOperand,
		stepLparen, stepOperand, stepRparen,
		stepComma, stepOperand, stepComma, stepOperand},
}

func (ps *ParseState) parseOperandList(alg parseAlg) {
	if alg == algNone {
		return
	}
	if alg == algNoneOrOp1 {
		if matchOperandFirst(ps.lexer.Lookahead()) {
			ps.parseOperand()
		}
		return
	}

	for _, step := range parseAlgSteps[alg] {
		switch step {
		case stepOperand:
			ps.parseOperand()
		case stepComma:
			ps.parseToken(TOKEN_COMMA)
		case stepLparen:
			if ps.hasToken(TOKEN_LPAREN) {
				ps.visitor.OpenParen(PAREN_NORMAL)
			}
			ps.parseToken(TOKEN_LPAREN)
		case stepRparen:
			if ps.hasToken(TOKEN_RPAREN) {
				ps.visitor.CloseParen(PAREN_NORMAL)
			}
			ps.parseToken(TOKEN_RPAREN)
		case stepOptComma:
			if !ps.hasToken(TOKEN_COMMA) {
				return
			}
			ps.parseToken(TOKEN_COMMA)
		}
		if ps.failed() {
			return
		}
	}
}

func (ps *ParseState) parseInstruction() {
	ps.lexer.SetIdentifierRule(IDENT_MNEMONIC)

	mnemonicToken := ps.lexer.Lookahead()
	if mnemonicToken.Kind != TOKEN_IDENTIFIER {
		// Blank line
		ps.lexer.SetIdentifierRule(IDENT_TYPICAL)
		return
	}

	info, found := mnemonicTokens[mnemonicToken.Text]
	extended := false
	if !found {
		info, found = extendedTokens[mnemonicToken.Text]
		if !found {
			ps.EmitErrorHere(f("Unknown or unsupported mnemonic '%v'", mnemonicToken.ValStr()))
			return
		}
		extended = true
	}

	ps.visitor.InstructionPre(info, extended)

	ps.lexer.EatAndReset()

	ps.parseOperandList(info.alg)
	if ps.failed() {
		return
	}

	ps.visitor.InstructionPost(info, extended)
}

func (ps *ParseState) parseLabel() {
	var toks [2]Token
	ps.lexer.LookaheadN(toks[:])

	if toks[0].Kind == TOKEN_IDENTIFIER && toks[1].Kind == TOKEN_COLON {
		ps.visitor.LabelDecl(toks[0].Text)
		if ps.failed() {
			return
		}
		ps.lexer.EatN(2)
	}
}

func (ps *ParseState) parseResolvedExpr() {
	ps.visitor.ResolvedExprPre()
	ps.parseBitor()
	if ps.failed() {
		return
	}
	ps.visitor.ResolvedExprPost()
}

func (ps *ParseState) parseExpressionList() {
	ps.parseResolvedExpr()
	if ps.failed() {
		return
	}

	for ps.hasToken(TOKEN_COMMA) {
		ps.lexer.Eat()
		ps.parseResolvedExpr()
		if ps.failed() {
			return
		}
	}
}

func (ps *ParseState) parseFloat() {
	fltToken := ps.lexer.LookaheadFloat()
	if fltToken.Kind != TOKEN_FLOAT {
		ps.EmitErrorHere(f("Invalid floating point literal"))
		return
	}
	ps.visitor.ResolvedExprPre()
	ps.visitor.Terminal(TERM_FLT, fltToken)
	ps.lexer.Eat()
	ps.visitor.ResolvedExprPost()
}

func (ps *ParseState) parseFloatList() {
	ps.parseFloat()
	if ps.failed() {
		return
	}

	for ps.hasToken(TOKEN_COMMA) {
		ps.lexer.Eat()
		ps.parseFloat()
		if ps.failed() {
			return
		}
	}
}

func (ps *ParseState) parseDefvar() {
	tok := ps.lexer.Lookahead()
	if tok.Kind != TOKEN_IDENTIFIER {
		ps.EmitErrorHere(f("Expected an identifier, but found '%v'", tok.ValStr()))
		return
	}

	ps.visitor.VarDecl(tok.Text)
	if ps.failed() {
		return
	}
	ps.lexer.Eat()

	ps.parseToken(TOKEN_COMMA)
	if ps.failed() {
		return
	}

	ps.parseResolvedExpr()
}

func (ps *ParseState) parseString() {
	tok := ps.lexer.Lookahead()
	if tok.Kind != TOKEN_STRING {
		ps.EmitErrorHere(f("Expected a string literal, but found '%v'", tok.ValStr()))
		return
	}
	ps.visitor.Terminal(TERM_STR, tok)
	ps.lexer.Eat()
}

func (ps *ParseState) parseDirective() {
	ps.lexer.SetIdentifierRule(IDENT_DIRECTIVE)

	tok := ps.lexer.Lookahead()
	if tok.Kind != TOKEN_IDENTIFIER {
		ps.EmitErrorHere(f("Unexpected token '%v' in directive type", tok.ValStr()))
		return
	}

	directive, found := directiveMap[tok.Text]
	if !found {
		ps.EmitErrorHere(f("Unknown assembler directive '%v'", tok.ValStr()))
		return
	}

	ps.visitor.DirectivePre(directive)

	ps.lexer.EatAndReset()
	switch directive {
	case DIRECTIVE_BYTE, DIRECTIVE_2BYTE, DIRECTIVE_4BYTE, DIRECTIVE_8BYTE:
		ps.parseExpressionList()

	case DIRECTIVE_FLOAT, DIRECTIVE_DOUBLE:
		ps.parseFloatList()

	case DIRECTIVE_LOCATE, DIRECTIVE_ZEROS, DIRECTIVE_SKIP:
		ps.parseResolvedExpr()

	case DIRECTIVE_PADALIGN, DIRECTIVE_ALIGN:
		ps.parseImm()

	case DIRECTIVE_DEFVAR:
		ps.parseDefvar()

	case DIRECTIVE_ASCII, DIRECTIVE_ASCIZ:
		ps.parseString()
	}

	if ps.failed() {
		return
	}

	ps.visitor.DirectivePost(directive)
}

func (ps *ParseState) parseLine() {
	if ps.hasToken(TOKEN_DOT) {
		ps.parseToken(TOKEN_DOT)
		ps.parseDirective()
	} else {
		ps.parseInstruction()
	}
}

func (ps *ParseState) parseProgram() {
	if ps.lexer.LookaheadKind() == TOKEN_EOF {
		ps.eof = true
		return
	}
	ps.parseLabel()
	if ps.failed() {
		return
	}
	ps.parseLine()
	if ps.failed() {
		return
	}

	for !ps.eof && !ps.failed() {
		switch ps.lexer.LookaheadKind() {
		case TOKEN_EOF:
			ps.eof = true
		case TOKEN_EOL:
			ps.lexer.Eat()
			ps.parseLabel()
			if ps.failed() {
				return
			}
			ps.parseLine()
		default:
			ps.EmitErrorHere(f("Unexpected token '%v' where line should have ended",
				ps.lexer.Lookahead().ValStr()))
		}
	}
}
