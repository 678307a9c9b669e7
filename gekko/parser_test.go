// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// eventVisitor records the callout sequence of a parse as short strings,
// so a test can compare the observed traversal against an expected one.
type eventVisitor struct {
	NoopVisitor
	events []string
}

func (v *eventVisitor) add(format string, args ...any) {
	v.events = append(v.events, fmt.Sprintf(format, args...))
}

func (v *eventVisitor) DirectivePre(d Directive)  { v.add("dir-pre %d", d) }
func (v *eventVisitor) DirectivePost(d Directive) { v.add("dir-post %d", d) }

func (v *eventVisitor) InstructionPre(info ParseInfo, extended bool) {
	v.add("inst-pre ext=%v", extended)
}

func (v *eventVisitor) InstructionPost(info ParseInfo, extended bool) {
	v.add("inst-post")
}

func (v *eventVisitor) OperandPre()  { v.add("op-pre") }
func (v *eventVisitor) OperandPost() { v.add("op-post") }

func (v *eventVisitor) Operator(op AsmOp) { v.add("operator %d", op) }

func (v *eventVisitor) Terminal(term Terminal, tok Token) {
	v.add("terminal %d %v", term, tok.Text)
}

func (v *eventVisitor) HiAddr(id string) { v.add("hiaddr %v", id) }
func (v *eventVisitor) LoAddr(id string) { v.add("loaddr %v", id) }

func (v *eventVisitor) OpenParen(kind ParenKind)  { v.add("open %d", kind) }
func (v *eventVisitor) CloseParen(kind ParenKind) { v.add("close %d", kind) }

func (v *eventVisitor) LabelDecl(name string) { v.add("label %v", name) }
func (v *eventVisitor) VarDecl(name string)   { v.add("var %v", name) }

func (v *eventVisitor) Error()           { v.add("error") }
func (v *eventVisitor) PostParseAction() { v.add("post-parse") }

func parseEvents(source string) []string {
	v := &eventVisitor{}
	ParseWithVisitor(source, v)
	return v.events
}

func TestParseInstructionEvents(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{
		"inst-pre ext=false",
		"op-pre",
		"terminal 7 r3",
		"op-post",
		"op-pre",
		"terminal 7 r4",
		"op-post",
		"op-pre",
		"terminal 7 r5",
		"op-post",
		"inst-post",
		"post-parse",
	}, parseEvents("add r3, r4, r5"))
}

func TestParseLabelAndInstruction(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents("loop: b loop")
	assert.Equal("label loop", events[0])
	assert.Equal("inst-pre ext=false", events[1])
	assert.Contains(events, "terminal 6 loop")
	assert.Equal("post-parse", events[len(events)-1])
}

// Operators report after their operands, in evaluation order.
func TestParseExpressionEvents(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{
		"inst-pre ext=true",
		"op-pre",
		"terminal 7 r3",
		"op-post",
		"op-pre",
		"open 0",
		"terminal 1 1",
		"terminal 1 2",
		"operator 5",
		"close 0",
		"terminal 1 3",
		"operator 7",
		"op-post",
		"inst-post",
		"post-parse",
	}, parseEvents("li r3, (1 + 2) * 3"))
}

func TestParseOffsetOperandEvents(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents("lwz r1, 4(r2)")
	assert.Contains(events, "terminal 7 r1")
	assert.Contains(events, "terminal 1 4")
	assert.Contains(events, "terminal 7 r2")
	assert.Equal("post-parse", events[len(events)-1])
}

func TestParseDirectiveEvents(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents(".4byte 0xdeadbeef")
	assert.Equal(fmt.Sprintf("dir-pre %d", DIRECTIVE_4BYTE), events[0])
	assert.Contains(events, "terminal 0 0xdeadbeef")
	assert.Equal(fmt.Sprintf("dir-post %d", DIRECTIVE_4BYTE), events[len(events)-2])
}

func TestParseDefvarEvents(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents(".defvar size, 16")
	assert.Contains(events, "var size")
	assert.Contains(events, "terminal 1 16")
}

func TestParseAddressHalfEvents(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents("lis r4, sym@ha\nori r4, r4, sym@l")
	assert.Contains(events, "hiaddr sym")
	assert.Contains(events, "loaddr sym")
}

func TestParseParenKinds(t *testing.T) {
	assert := assert.New(t)

	events := parseEvents("li r3, (1 + 2)")
	assert.Contains(events, fmt.Sprintf("open %d", PAREN_NORMAL))
	assert.Contains(events, fmt.Sprintf("close %d", PAREN_NORMAL))

	events = parseEvents("b `0x80000000`")
	assert.Contains(events, fmt.Sprintf("open %d", PAREN_REL_CONV))
	assert.Contains(events, fmt.Sprintf("close %d", PAREN_REL_CONV))
}

func TestParseErrorEvents(t *testing.T) {
	assert := assert.New(t)

	v := &eventVisitor{}
	ParseWithVisitor("frobnicate r1", v)
	assert.Contains(v.events, "error")
	assert.NotContains(v.events, "post-parse")
	if assert.NotNil(v.ForwardedErr) {
		assert.Contains(v.ForwardedErr.Message, "Unknown or unsupported mnemonic")
	}
}

func TestParseOwnerLifecycle(t *testing.T) {
	assert := assert.New(t)

	v := &eventVisitor{}
	ParseWithVisitor("nop", v)
	assert.Nil(v.Owner)
	assert.Nil(v.ForwardedErr)
}

func TestParseErrorPositions(t *testing.T) {
	assert := assert.New(t)

	v := &eventVisitor{}
	ParseWithVisitor("nop\n\tbogus r1", v)
	if assert.NotNil(v.ForwardedErr) {
		assert.Equal(1, v.ForwardedErr.Line)
		assert.Equal(1, v.ForwardedErr.Col)
		assert.Equal(len("bogus"), v.ForwardedErr.Len)
	}
}
