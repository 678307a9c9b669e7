// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package highlight classifies assembly source into display format
// spans by listening to a parse. It produces data only; rendering is
// left to the caller.
package highlight

import (
	"github.com/ezrec/gekkoasm/gekko"
)

// Format classifies one region of a source line.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_DEFAULT   = Format(0)  // Default
	FORMAT_DIRECTIVE = Format(1)  // Directive
	FORMAT_MNEMONIC  = Format(2)  // Mnemonic
	FORMAT_SYMBOL    = Format(3)  // Symbol
	FORMAT_IMMEDIATE = Format(4)  // Immediate
	FORMAT_GPR       = Format(5)  // GPR
	FORMAT_FPR       = Format(6)  // FPR
	FORMAT_SPR       = Format(7)  // SPR
	FORMAT_CR_FIELD  = Format(8)  // CR Field
	FORMAT_CR_FLAG   = Format(9)  // CR Flag
	FORMAT_STRING    = Format(10) // String
	FORMAT_HA_LA     = Format(11) // Address Half
	FORMAT_PAREN     = Format(12) // Paren
	FORMAT_ERROR     = Format(13) // Error
)

// Span is one formatted region, by column offset and length.
type Span struct {
	Col    int
	Len    int
	Format Format
}

// ParenPair records the columns of a matched open and close paren.
type ParenPair struct {
	Open  int
	Close int
}

// Result is the classification of one scanned source string.
type Result struct {
	Spans    []Span
	Parens   []ParenPair
	Err      *gekko.AssemblerError
	ErrAtEOL bool
}

// Scan parses source and reports its format spans, matched paren
// pairs, and the parse error if there was one. Spans cover only the
// regions the parse reached; an error cuts classification short.
func Scan(source string) Result {
	v := &scanVisitor{}
	gekko.ParseWithVisitor(source, v)

	result := Result{Spans: v.spans, Parens: v.matched}
	if v.ForwardedErr != nil {
		result.Err = v.ForwardedErr
		result.ErrAtEOL = v.ForwardedErr.Len == 0
	}
	return result
}

// MatchParenAt finds the paren pair with an end at the given column.
func (r Result) MatchParenAt(col int) (ParenPair, bool) {
	for _, pair := range r.Parens {
		if pair.Open == col || pair.Close == col {
			return pair, true
		}
	}
	return ParenPair{}, false
}

type scanVisitor struct {
	gekko.NoopVisitor
	parenStack []int
	matched    []ParenPair
	spans      []Span
}

func (v *scanVisitor) markCurToken(format Format) {
	lex := v.Owner.Lexer()
	v.spans = append(v.spans, Span{
		Col:    lex.ColNumber(),
		Len:    len(lex.Lookahead().Text),
		Format: format,
	})
}

func (v *scanVisitor) DirectivePre(gekko.Directive) {
	v.markCurToken(FORMAT_DIRECTIVE)
}

func (v *scanVisitor) InstructionPre(gekko.ParseInfo, bool) {
	v.markCurToken(FORMAT_MNEMONIC)
}

func (v *scanVisitor) Terminal(term gekko.Terminal, tok gekko.Token) {
	switch term {
	case gekko.TERM_ID:
		v.markCurToken(FORMAT_SYMBOL)
	case gekko.TERM_HEX, gekko.TERM_DEC, gekko.TERM_OCT, gekko.TERM_BIN, gekko.TERM_FLT:
		v.markCurToken(FORMAT_IMMEDIATE)
	case gekko.TERM_GPR:
		v.markCurToken(FORMAT_GPR)
	case gekko.TERM_FPR:
		v.markCurToken(FORMAT_FPR)
	case gekko.TERM_SPR:
		v.markCurToken(FORMAT_SPR)
	case gekko.TERM_CR_FIELD:
		v.markCurToken(FORMAT_CR_FIELD)
	case gekko.TERM_LT, gekko.TERM_GT, gekko.TERM_EQ, gekko.TERM_SO:
		v.markCurToken(FORMAT_CR_FLAG)
	case gekko.TERM_STR:
		v.markCurToken(FORMAT_STRING)
	}
}

// HiAddr marks the symbol under the cursor plus the ha/l selector two
// tokens ahead, which has not been consumed yet.
func (v *scanVisitor) HiAddr(string) {
	v.markCurToken(FORMAT_SYMBOL)

	lex := v.Owner.Lexer()
	var toks [3]gekko.Token
	lex.LookaheadN(toks[:])
	v.spans = append(v.spans, Span{
		Col:    lex.LookaheadColNumber(2),
		Len:    len(toks[2].Text),
		Format: FORMAT_HA_LA,
	})
}

func (v *scanVisitor) LoAddr(id string) {
	v.HiAddr(id)
}

func (v *scanVisitor) OpenParen(gekko.ParenKind) {
	v.parenStack = append(v.parenStack, v.Owner.Lexer().ColNumber())
}

func (v *scanVisitor) CloseParen(gekko.ParenKind) {
	if len(v.parenStack) == 0 {
		return
	}
	top := len(v.parenStack) - 1
	v.matched = append(v.matched, ParenPair{
		Open:  v.parenStack[top],
		Close: v.Owner.Lexer().ColNumber(),
	})
	v.parenStack = v.parenStack[:top]
}

func (v *scanVisitor) ForwardError(err gekko.AssemblerError) {
	v.NoopVisitor.ForwardError(err)
	v.spans = append(v.spans, Span{Col: err.Col, Len: err.Len, Format: FORMAT_ERROR})
}

func (v *scanVisitor) LabelDecl(string) {
	v.markCurToken(FORMAT_SYMBOL)
}

func (v *scanVisitor) VarDecl(string) {
	v.markCurToken(FORMAT_SYMBOL)
}
