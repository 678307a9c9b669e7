// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustAssemble(t *testing.T, base uint32, program ...string) []Block {
	t.Helper()

	blocks, err := Assemble(strings.Join(program, "\n"), base)
	if err != nil {
		var asmErr AssemblerError
		if errors.As(err, &asmErr) {
			t.Fatal(asmErr.Detail())
		}
		t.Fatal(err)
	}
	return blocks
}

// assembleWords assembles a program that must produce a single block of
// whole instruction words and returns those words.
func assembleWords(t *testing.T, base uint32, program ...string) []uint32 {
	t.Helper()

	blocks := mustAssemble(t, base, program...)
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	raw := blocks[0].Bytes
	if len(raw)%4 != 0 {
		t.Fatalf("block length %d is not word aligned", len(raw))
	}

	words := make([]uint32, 0, len(raw)/4)
	for i := 0; i < len(raw); i += 4 {
		words = append(words, binary.BigEndian.Uint32(raw[i:]))
	}
	return words
}

func assembleErr(t *testing.T, base uint32, program ...string) AssemblerError {
	t.Helper()

	_, err := Assemble(strings.Join(program, "\n"), base)
	if err == nil {
		t.Fatal("expected an assembly error")
	}
	var asmErr AssemblerError
	if !errors.As(err, &asmErr) {
		t.Fatalf("expected an AssemblerError, got %T", err)
	}
	return asmErr
}

func wordEqual(t *testing.T, expected uint32, source string) {
	t.Helper()

	words := assembleWords(t, 0x80003100, source)
	if len(words) != 1 {
		t.Fatalf("%v: expected one word, got %d", source, len(words))
	}
	if words[0] != expected {
		t.Errorf("%v: expected %08x, got %08x", source, expected, words[0])
	}
}

func TestAssembleBasic(t *testing.T) {
	wordEqual(t, 0x60000000, "nop")
	wordEqual(t, 0x38600001, "li r3, 1")
	wordEqual(t, 0x3c801235, "lis r4, 0x1235")
	wordEqual(t, 0x3863ffff, "addi r3, r3, -1")
	wordEqual(t, 0x3863ffff, "subi r3, r3, 1")
	wordEqual(t, 0x7c642a14, "add r3, r4, r5")
	wordEqual(t, 0x7c642a15, "add. r3, r4, r5")
	wordEqual(t, 0x7c642e14, "addo r3, r4, r5")
	wordEqual(t, 0x44000002, "sc")
}

func TestAssembleAliases(t *testing.T) {
	assert := assert.New(t)

	// Each alias pair must produce identical words.
	pairs := [][2]string{
		{"mr r5, r6", "or r5, r6, r6"},
		{"mtxer r3", "mtspr 1, r3"},
		{"mftbl r3", "mftb r3, 268"},
		{"nop", "ori r0, r0, 0"},
		{"crclr 3", "crxor 3, 3, 3"},
	}
	for _, pair := range pairs {
		alias := assembleWords(t, 0x80003100, pair[0])
		expansion := assembleWords(t, 0x80003100, pair[1])
		assert.Equal(expansion, alias, "%v vs %v", pair[0], pair[1])
	}

	wordEqual(t, 0x7cc53378, "mr r5, r6")
	wordEqual(t, 0x4c631982, "crclr 3")
}

func TestAssembleMemory(t *testing.T) {
	wordEqual(t, 0x80220004, "lwz r1, 4(r2)")
	wordEqual(t, 0x90220008, "stw r1, 8(r2)")
	wordEqual(t, 0x7c22192d, "stwcx. r1, r2, r3")
}

func TestAssembleSprMoves(t *testing.T) {
	wordEqual(t, 0x7c0802a6, "mflr r0")
	wordEqual(t, 0x7c0803a6, "mtlr r0")
	wordEqual(t, 0x7c6103a6, "mtxer r3")
	wordEqual(t, 0x7c6c42e6, "mftbl r3")
	wordEqual(t, 0x7c0803a6, "mtspr lr, r0")
}

func TestAssembleCompare(t *testing.T) {
	wordEqual(t, 0x2c030000, "cmpwi r3, 0")
	wordEqual(t, 0x2f830000, "cmpwi cr7, r3, 0")
	wordEqual(t, 0x28038000, "cmplwi r3, 0x8000")
}

func TestAssembleRotates(t *testing.T) {
	wordEqual(t, 0x5483103a, "slwi r3, r4, 2")
	wordEqual(t, 0x5483f0be, "srwi r3, r4, 2")
}

func TestAssembleBranchBackward(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		"target:",
		"b target",
	)
	assert.Equal([]uint32{0x48000000}, words)

	words = assembleWords(t, 0x80003100,
		"loop:",
		"nop",
		"bdnz loop",
	)
	assert.Equal([]uint32{0x60000000, 0x4200fffc}, words)
}

func TestAssembleBranchForward(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		"blt done",
		"nop",
		"done:",
		"nop",
	)
	assert.Equal([]uint32{0x41800008, 0x60000000, 0x60000000}, words)

	words = assembleWords(t, 0x80003100,
		"bne cr7, out",
		"out:",
		"nop",
	)
	assert.Equal([]uint32{0x409e0004, 0x60000000}, words)
}

// Backward and forward label references both encode as the displacement
// from the branch to the label (-8 and +12 here), whatever the load address.
func TestAssembleBranchSymmetry(t *testing.T) {
	assert := assert.New(t)

	backward := assembleWords(t, 0x80003100,
		"spot:",
		"nop",
		"nop",
		"b spot",
	)
	forward := assembleWords(t, 0x80004200,
		"nop",
		"nop",
		"b spot2",
		"nop",
		"nop",
		"spot2:",
	)

	assert.Equal(uint32(0x4bfffff8), backward[2])
	assert.Equal(uint32(0x4800000c), forward[2])
}

func TestAssembleBranchRegisters(t *testing.T) {
	wordEqual(t, 0x4e800020, "blr")
	wordEqual(t, 0x4e800420, "bctr")
	wordEqual(t, 0x4d820020, "beqlr")
}

func TestAssembleBranchRange(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0, "b . + 0x01fffffc")
	assert.Equal([]uint32{0x49fffffc}, words)

	err := assembleErr(t, 0, "b . + 0x02000000")
	assert.Contains(err.Message, "too large")

	err = assembleErr(t, 0, "b . + 2")
	assert.Contains(err.Message, "aligned")
}

func TestAssembleImmediateRange(t *testing.T) {
	assert := assert.New(t)

	wordEqual(t, 0x38637fff, "addi r3, r3, 32767")
	wordEqual(t, 0x38638000, "addi r3, r3, -32768")

	err := assembleErr(t, 0x80003100, "addi r3, r3, 32768")
	assert.Contains(err.Message, "too large")

	err = assembleErr(t, 0x80003100, "addi r3, r3, -32769")
	assert.Contains(err.Message, "too small")
}

func TestAssemblePairedSingle(t *testing.T) {
	assert := assert.New(t)

	wordEqual(t, 0xe0232008, "psq_l f1, 8(r3), 0, 2")

	err := assembleErr(t, 0x80003100, "psq_l f1, 0x1000(r3), 0, 2")
	assert.Contains(err.Message, "too large")
}

func TestAssembleOperandExpressions(t *testing.T) {
	wordEqual(t, 0x38600009, "li r3, (1 + 2) * 3")
	wordEqual(t, 0x386000f0, "li r3, 0xff & ~0xf")
	wordEqual(t, 0x38600050, "li r3, 5 << 4")
	wordEqual(t, 0x38600005, "li r3, 0x50 >> 4")
	wordEqual(t, 0x386000ff, "li r3, 0xf0 | 0x0f")
	wordEqual(t, 0x386000a5, "li r3, 0xff ^ 0x5a")
}

// Backticks convert an absolute address into a displacement from the
// instruction carrying the expression.
func TestAssembleRelativeConversion(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		"nop",
		"b `0x80003100`",
	)
	assert.Equal([]uint32{0x60000000, 0x4bfffffc}, words)
}

func TestAssembleDataDirectives(t *testing.T) {
	assert := assert.New(t)

	blocks := mustAssemble(t, 0x80003100,
		".byte 1, 2, 0xff",
		".2byte 0x1234",
		".4byte 0xdeadbeef",
		".8byte 0x0102030405060708",
	)
	assert.Equal([]byte{
		0x01, 0x02, 0xff,
		0x12, 0x34,
		0xde, 0xad, 0xbe, 0xef,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}, blocks[0].Bytes)

	blocks = mustAssemble(t, 0x80003100, ".4byte (1 + 2) * 3")
	assert.Equal([]byte{0x00, 0x00, 0x00, 0x09}, blocks[0].Bytes)
}

func TestAssembleFloatDirectives(t *testing.T) {
	assert := assert.New(t)

	blocks := mustAssemble(t, 0x80003100, ".float 1.0")
	assert.Equal([]byte{0x3f, 0x80, 0x00, 0x00}, blocks[0].Bytes)

	blocks = mustAssemble(t, 0x80003100, ".double 1.5")
	assert.Equal([]byte{0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, blocks[0].Bytes)

	blocks = mustAssemble(t, 0x80003100, ".float 1.0, 2.0")
	assert.Equal([]byte{0x3f, 0x80, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00}, blocks[0].Bytes)
}

func TestAssembleStringDirectives(t *testing.T) {
	assert := assert.New(t)

	blocks := mustAssemble(t, 0x80003100, `.ascii "Hi\n"`)
	assert.Equal([]byte{'H', 'i', '\n'}, blocks[0].Bytes)

	blocks = mustAssemble(t, 0x80003100, `.asciz "ok"`)
	assert.Equal([]byte{'o', 'k', 0}, blocks[0].Bytes)

	blocks = mustAssemble(t, 0x80003100, `.ascii "\x41\102"`)
	assert.Equal([]byte{'A', 'B'}, blocks[0].Bytes)
}

func TestAssembleLayoutDirectives(t *testing.T) {
	assert := assert.New(t)

	// locate starts a fresh block at the requested address
	blocks := mustAssemble(t, 0x80000000,
		"nop",
		".locate 0x80000010",
		"blr",
	)
	assert.Equal(2, len(blocks))
	assert.Equal(uint32(0x80000000), blocks[0].Address)
	assert.Equal([]byte{0x60, 0x00, 0x00, 0x00}, blocks[0].Bytes)
	assert.Equal(uint32(0x80000010), blocks[1].Address)
	assert.Equal([]byte{0x4e, 0x80, 0x00, 0x20}, blocks[1].Bytes)

	// zeros emits in-block padding
	blocks = mustAssemble(t, 0x80003100,
		".byte 1",
		".zeros 3",
		".byte 2",
	)
	assert.Equal([]byte{0x01, 0x00, 0x00, 0x00, 0x02}, blocks[0].Bytes)

	// skip leaves a gap by starting a new block
	blocks = mustAssemble(t, 0x80003100,
		".byte 1",
		".skip 3",
		".byte 2",
	)
	assert.Equal(2, len(blocks))
	assert.Equal(uint32(0x80003104), blocks[1].Address)
	assert.Equal([]byte{0x02}, blocks[1].Bytes)

	// padalign pads the current block up to the alignment
	blocks = mustAssemble(t, 0x80003100,
		".byte 1",
		".padalign 2",
		".byte 2",
	)
	assert.Equal([]byte{0x01, 0x00, 0x00, 0x00, 0x02}, blocks[0].Bytes)

	// align starts an aligned block without emitting pad bytes
	blocks = mustAssemble(t, 0x80003100,
		".byte 1",
		".align 3",
		".byte 2",
	)
	assert.Equal(2, len(blocks))
	assert.Equal(uint32(0x80003108), blocks[1].Address)

	// a label declared after align binds to the aligned block base
	blocks = mustAssemble(t, 0x80003100,
		"nop",
		".align 3",
		"target:",
		"lis r3, target@ha",
		"ori r3, r3, target@l",
	)
	assert.Equal(uint32(0x80003108), blocks[1].Address)
	assert.Equal([]byte{0x3c, 0x60, 0x80, 0x00, 0x60, 0x63, 0x31, 0x08}, blocks[1].Bytes)
}

func TestAssembleDefvar(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		".defvar count, 4 + 1",
		"li r3, count",
	)
	assert.Equal([]uint32{0x38600005}, words)

	words = assembleWords(t, 0x80003100,
		".defvar first, 3",
		".defvar second, first * 2",
		"li r3, second",
	)
	assert.Equal([]uint32{0x38600006}, words)
}

func TestAssembleAddressHalves(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		".defvar sym, 0x12348765",
		"lis r4, sym@ha",
		"ori r4, r4, sym@l",
	)
	// The low half has bit 15 set, so the high half carries up by one.
	assert.Equal([]uint32{0x3c801235, 0x60848765}, words)

	words = assembleWords(t, 0x80003100,
		".defvar flat, 0x12340765",
		"lis r4, flat@ha",
		"ori r4, r4, flat@l",
	)
	assert.Equal([]uint32{0x3c801234, 0x60840765}, words)
}

func TestAssembleLabelAddressHalves(t *testing.T) {
	assert := assert.New(t)

	// Labels resolve to their absolute address under @ha/@l.
	words := assembleWords(t, 0x80003100,
		"entry:",
		"lis r4, entry@ha",
		"ori r4, r4, entry@l",
	)
	assert.Equal([]uint32{0x3c808000, 0x60843100}, words)
}

func TestAssembleMultipleLabels(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, 0x80003100,
		"start:",
		"li r3, 10",
		"loop:",
		"subi r3, r3, 1",
		"cmpwi r3, 0",
		"bne loop",
		"blr",
	)
	assert.Equal([]uint32{
		0x3860000a,
		0x3863ffff,
		0x2c030000,
		0x4082fff8,
		0x4e800020,
	}, words)
}

func TestAssembleErrUnknownMnemonic(t *testing.T) {
	assert := assert.New(t)

	err := assembleErr(t, 0x80003100, "frobnicate r1")
	assert.Contains(err.Message, "Unknown or unsupported mnemonic")
	assert.Equal(0, err.Line)
	assert.Equal(0, err.Col)
	assert.Equal(len("frobnicate"), err.Len)
}

func TestAssembleErrDuplicateLabel(t *testing.T) {
	assert := assert.New(t)

	err := assembleErr(t, 0x80003100,
		"again: nop",
		"again: nop",
	)
	assert.Contains(err.Message, "already defined")
	assert.Equal(1, err.Line)

	err = assembleErr(t, 0x80003100,
		".defvar twice, 1",
		".defvar twice, 2",
	)
	assert.Contains(err.Message, "already defined")
}

func TestAssembleErrUndefinedSymbol(t *testing.T) {
	assert := assert.New(t)

	// Directive expressions resolve immediately.
	err := assembleErr(t, 0x80003100, ".4byte missing")
	assert.Contains(err.Message, "Undefined reference")

	// Instruction operands resolve after the whole program has been
	// seen, but an unresolved symbol still reports at its source line.
	err = assembleErr(t, 0x80003100,
		"nop",
		"b nowhere",
	)
	assert.Contains(err.Message, "Unresolved symbol 'nowhere'")
	assert.Equal(1, err.Line)
	assert.Equal(2, err.Col)
	assert.Equal(len("nowhere"), err.Len)
}

func TestAssembleErrDivisionByZero(t *testing.T) {
	assert := assert.New(t)

	err := assembleErr(t, 0x80003100, ".4byte 1 / 0")
	assert.Contains(err.Message, "Division by zero")

	err = assembleErr(t, 0x80003100, "li r3, 1 / 0")
	assert.Contains(err.Message, "Division by zero")
}

func TestAssembleErrOperandCount(t *testing.T) {
	assert := assert.New(t)

	err := assembleErr(t, 0x80003100, "add r3, r4")
	assert.Contains(err.Message, "but found '<EOF>'")
}

func TestAssembleErrDetail(t *testing.T) {
	assert := assert.New(t)

	err := assembleErr(t, 0x80003100, "addi r3, r3, 32768")
	detail := err.Detail()
	assert.Contains(detail, "addi r3, r3, 32768")
	assert.Contains(detail, "^")
}

func TestAssembleEmpty(t *testing.T) {
	assert := assert.New(t)

	blocks, err := Assemble("", 0x80003100)
	assert.NoError(err)
	assert.Equal(1, len(blocks))
	assert.Equal(uint32(0x80003100), blocks[0].Address)
	assert.Equal(0, len(blocks[0].Bytes))

	blocks, err = Assemble("\n\n", 0x80003100)
	assert.NoError(err)
	assert.Equal(0, len(blocks[0].Bytes))
}
