// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

// Extended mnemonics parse their own operand shape, rewrite the operand
// list, and then encode through a basic mnemonic's desc slot. The rewrite
// runs before operand range checks, so synthesized values are validated
// against the base instruction's slots like any written operand.

type extendedEntry struct {
	names     []string
	base      string
	family    mnemonicFamily
	alg       parseAlg
	transform func(*OperandList)
}

// extendedMnemonicDesc is one slot of the flat extended desc table,
// pointing at the basic desc slot that does the encoding.
type extendedMnemonicDesc struct {
	mnemonicIndex int
	transform     func(*OperandList)
}

// insertAt synthesizes a fixed operand at the given position.
func insertAt(index int, val uint32) func(*OperandList) {
	return func(ol *OperandList) { ol.Insert(index, val) }
}

// fillBoBi synthesizes both branch condition operands.
func fillBoBi(bo, bi uint32) func(*OperandList) {
	return func(ol *OperandList) {
		ol.Insert(0, bo)
		ol.Insert(1, bi)
	}
}

// fillCond handles the condition-comparison branches. The optional
// leading cr field operand defaults to cr0; the field number and the
// condition bit combine into the BI operand.
func fillCond(bo, cond uint32, params int) func(*OperandList) {
	return func(ol *OperandList) {
		if ol.Count() < params {
			ol.Insert(0, 0)
		}
		ol.SetValue(0, ol.Value(0)<<2|cond)
		ol.Insert(0, bo)
	}
}

func negateSIMM(ol *OperandList) {
	ol.SetValue(2, -ol.Value(2))
}

func swapRegs(ol *OperandList) {
	a, b := ol.Value(1), ol.Value(2)
	ol.SetValue(1, b)
	ol.SetValue(2, a)
}

// wordCompare defaults the cr field to cr0 and pins L to word mode.
func wordCompare(ol *OperandList) {
	if ol.Count() == 2 {
		ol.Insert(0, 0)
	}
	ol.Insert(1, 0)
}

// Rotate sugar, rewritten to rlwinm/rlwimi/rlwnm shift and mask operands.

func extlwiXform(ol *OperandList) {
	n, b := ol.Value(2), ol.Value(3)
	ol.SetValue(2, b)
	ol.SetValue(3, 0)
	ol.Insert(4, n-1)
}

func extrwiXform(ol *OperandList) {
	n, b := ol.Value(2), ol.Value(3)
	ol.SetValue(2, b+n)
	ol.SetValue(3, 32-n)
	ol.Insert(4, 31)
}

func inslwiXform(ol *OperandList) {
	n, b := ol.Value(2), ol.Value(3)
	ol.SetValue(2, 32-b)
	ol.SetValue(3, b)
	ol.Insert(4, b+n-1)
}

func insrwiXform(ol *OperandList) {
	n, b := ol.Value(2), ol.Value(3)
	ol.SetValue(2, 32-(b+n))
	ol.SetValue(3, b)
	ol.Insert(4, b+n-1)
}

func rotlXform(ol *OperandList) {
	ol.Insert(3, 0)
	ol.Insert(4, 31)
}

func rotrwiXform(ol *OperandList) {
	ol.SetValue(2, 32-ol.Value(2))
	ol.Insert(3, 0)
	ol.Insert(4, 31)
}

func slwiXform(ol *OperandList) {
	n := ol.Value(2)
	ol.Insert(3, 0)
	ol.Insert(4, 31-n)
}

func srwiXform(ol *OperandList) {
	n := ol.Value(2)
	ol.SetValue(2, 32-n)
	ol.Insert(3, n)
	ol.Insert(4, 31)
}

func clrlwiXform(ol *OperandList) {
	n := ol.Value(2)
	ol.SetValue(2, 0)
	ol.Insert(3, n)
	ol.Insert(4, 31)
}

func clrrwiXform(ol *OperandList) {
	n := ol.Value(2)
	ol.SetValue(2, 0)
	ol.Insert(3, 0)
	ol.Insert(4, 31-n)
}

func clrlslwiXform(ol *OperandList) {
	b, n := ol.Value(2), ol.Value(3)
	ol.SetValue(2, n)
	ol.SetValue(3, b-n)
	ol.Insert(4, 31-n)
}

// dupCrBit expands a single cr bit into the three operands of a cr
// logical self-operation.
func dupCrBit(ol *OperandList) {
	bit := ol.Value(0)
	ol.Insert(1, bit)
	ol.Insert(2, bit)
}

// copyMiddle duplicates the source operand into the second source slot.
func copyMiddle(ol *OperandList) {
	ol.Insert(2, ol.Value(1))
}

func trapAlways(ol *OperandList) {
	ol.Insert(0, 31)
	ol.Insert(1, 0)
	ol.Insert(2, 0)
}

func oriZero(ol *OperandList) {
	ol.Insert(0, 0)
	ol.Insert(1, 0)
	ol.Insert(2, 0)
}

// mtSpr and mfSpr synthesize the split SPR field for a fixed register.
func mtSpr(spr uint32) func(*OperandList) {
	return insertAt(0, sprBitswap(spr))
}

func mfSpr(spr uint32) func(*OperandList) {
	return insertAt(1, sprBitswap(spr))
}

// sprgAt rebases an SPRG index operand into the split SPR field.
func sprgAt(index int) func(*OperandList) {
	return func(ol *OperandList) {
		ol.SetValue(index, sprBitswap(272+ol.Value(index)))
	}
}

// batAt rebases a BAT pair index operand. Upper and lower BAT registers
// interleave, so pair n lives at base+2n.
func batAt(index int, base uint32) func(*OperandList) {
	return func(ol *OperandList) {
		ol.SetValue(index, sprBitswap(base+2*ol.Value(index)))
	}
}

// bitswapAt converts a written SPR number operand into the split field.
func bitswapAt(index int) func(*OperandList) {
	return func(ol *OperandList) {
		ol.SetValue(index, sprBitswap(ol.Value(index)))
	}
}

var extendedMnemonics = []extendedEntry{
	// Subtract immediate and reversed-operand subtract
	{[]string{"subi"}, "addi", famPlain, algOp3, negateSIMM},
	{[]string{"subis"}, "addis", famPlain, algOp3, negateSIMM},
	{[]string{"subic"}, "addic", famPlain, algOp3, negateSIMM},
	{[]string{"subic."}, "addic.", famPlain, algOp3, negateSIMM},
	{[]string{"sub"}, "subf", famOeRc, algOp3, swapRegs},
	{[]string{"subc"}, "subfc", famOeRc, algOp3, swapRegs},

	// Word compare
	{[]string{"cmpwi"}, "cmpi", famPlain, algOp2Or3, wordCompare},
	{[]string{"cmpw"}, "cmp", famPlain, algOp2Or3, wordCompare},
	{[]string{"cmplwi"}, "cmpli", famPlain, algOp2Or3, wordCompare},
	{[]string{"cmplw"}, "cmpl", famPlain, algOp2Or3, wordCompare},

	// Rotate and shift sugar
	{[]string{"extlwi"}, "rlwinm", famRc, algOp4, extlwiXform},
	{[]string{"extrwi"}, "rlwinm", famRc, algOp4, extrwiXform},
	{[]string{"inslwi"}, "rlwimi", famRc, algOp4, inslwiXform},
	{[]string{"insrwi"}, "rlwimi", famRc, algOp4, insrwiXform},
	{[]string{"rotlwi"}, "rlwinm", famRc, algOp3, rotlXform},
	{[]string{"rotrwi"}, "rlwinm", famRc, algOp3, rotrwiXform},
	{[]string{"rotlw"}, "rlwnm", famRc, algOp3, rotlXform},
	{[]string{"slwi"}, "rlwinm", famRc, algOp3, slwiXform},
	{[]string{"srwi"}, "rlwinm", famRc, algOp3, srwiXform},
	{[]string{"clrlwi"}, "rlwinm", famRc, algOp3, clrlwiXform},
	{[]string{"clrrwi"}, "rlwinm", famRc, algOp3, clrrwiXform},
	{[]string{"clrlslwi"}, "rlwinm", famRc, algOp4, clrlslwiXform},

	// Conditional branch, cr bit and decrement forms. The trailing - and +
	// carry the static prediction hint; - is encoding-identical to the
	// unhinted form.
	{[]string{"bt", "bt-"}, "bc", famAaLk, algOp2, insertAt(0, 12)},
	{[]string{"bf", "bf-"}, "bc", famAaLk, algOp2, insertAt(0, 4)},
	{[]string{"bdnz", "bdnz-"}, "bc", famAaLk, algOp1, fillBoBi(16, 0)},
	{[]string{"bdnzt", "bdnzt-"}, "bc", famAaLk, algOp2, insertAt(0, 8)},
	{[]string{"bdnzf", "bdnzf-"}, "bc", famAaLk, algOp2, insertAt(0, 0)},
	{[]string{"bdz", "bdz-"}, "bc", famAaLk, algOp1, fillBoBi(18, 0)},
	{[]string{"bdzt", "bdzt-"}, "bc", famAaLk, algOp2, insertAt(0, 10)},
	{[]string{"bdzf", "bdzf-"}, "bc", famAaLk, algOp2, insertAt(0, 2)},
	{[]string{"bt+"}, "bc", famAaLk, algOp2, insertAt(0, 13)},
	{[]string{"bf+"}, "bc", famAaLk, algOp2, insertAt(0, 5)},
	{[]string{"bdnz+"}, "bc", famAaLk, algOp1, fillBoBi(17, 0)},
	{[]string{"bdnzt+"}, "bc", famAaLk, algOp2, insertAt(0, 9)},
	{[]string{"bdnzf+"}, "bc", famAaLk, algOp2, insertAt(0, 1)},
	{[]string{"bdz+"}, "bc", famAaLk, algOp1, fillBoBi(19, 0)},
	{[]string{"bdzt+"}, "bc", famAaLk, algOp2, insertAt(0, 11)},
	{[]string{"bdzf+"}, "bc", famAaLk, algOp2, insertAt(0, 3)},

	// Branch to link register
	{[]string{"blr"}, "bclr", famLk, algNone, fillBoBi(20, 0)},
	{[]string{"btlr", "btlr-"}, "bclr", famLk, algOp1, insertAt(0, 12)},
	{[]string{"bflr", "bflr-"}, "bclr", famLk, algOp1, insertAt(0, 4)},
	{[]string{"bdnzlr", "bdnzlr-"}, "bclr", famLk, algNone, fillBoBi(16, 0)},
	{[]string{"bdnztlr", "bdnztlr-"}, "bclr", famLk, algOp1, insertAt(0, 8)},
	{[]string{"bdnzflr", "bdnzflr-"}, "bclr", famLk, algOp1, insertAt(0, 0)},
	{[]string{"bdzlr", "bdzlr-"}, "bclr", famLk, algNone, fillBoBi(18, 0)},
	{[]string{"bdztlr", "bdztlr-"}, "bclr", famLk, algOp1, insertAt(0, 10)},
	{[]string{"bdzflr", "bdzflr-"}, "bclr", famLk, algOp1, insertAt(0, 2)},
	{[]string{"btlr+"}, "bclr", famLk, algOp1, insertAt(0, 13)},
	{[]string{"bflr+"}, "bclr", famLk, algOp1, insertAt(0, 5)},
	{[]string{"bdnzlr+"}, "bclr", famLk, algNone, fillBoBi(17, 0)},
	{[]string{"bdnztlr+"}, "bclr", famLk, algOp1, insertAt(0, 9)},
	{[]string{"bdnzflr+"}, "bclr", famLk, algOp1, insertAt(0, 1)},
	{[]string{"bdzlr+"}, "bclr", famLk, algNone, fillBoBi(19, 0)},
	{[]string{"bdztlr+"}, "bclr", famLk, algOp1, insertAt(0, 11)},
	{[]string{"bdzflr+"}, "bclr", famLk, algOp1, insertAt(0, 3)},

	// Branch to count register
	{[]string{"bctr"}, "bcctr", famLk, algNone, fillBoBi(20, 0)},
	{[]string{"btctr", "btctr-"}, "bcctr", famLk, algOp1, insertAt(0, 12)},
	{[]string{"bfctr", "bfctr-"}, "bcctr", famLk, algOp1, insertAt(0, 4)},
	{[]string{"btctr+"}, "bcctr", famLk, algOp1, insertAt(0, 13)},
	{[]string{"bfctr+"}, "bcctr", famLk, algOp1, insertAt(0, 5)},

	// Condition-comparison branches
	{[]string{"blt", "blt-"}, "bc", famAaLk, algOp1Or2, fillCond(12, 0, 2)},
	{[]string{"ble", "ble-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 1, 2)},
	{[]string{"beq", "beq-"}, "bc", famAaLk, algOp1Or2, fillCond(12, 2, 2)},
	{[]string{"bge", "bge-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 0, 2)},
	{[]string{"bgt", "bgt-"}, "bc", famAaLk, algOp1Or2, fillCond(12, 1, 2)},
	{[]string{"bnl", "bnl-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 0, 2)},
	{[]string{"bne", "bne-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 2, 2)},
	{[]string{"bng", "bng-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 1, 2)},
	{[]string{"bso", "bso-"}, "bc", famAaLk, algOp1Or2, fillCond(12, 3, 2)},
	{[]string{"bns", "bns-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 3, 2)},
	{[]string{"bun", "bun-"}, "bc", famAaLk, algOp1Or2, fillCond(12, 3, 2)},
	{[]string{"bnu", "bnu-"}, "bc", famAaLk, algOp1Or2, fillCond(4, 3, 2)},
	{[]string{"blt+"}, "bc", famAaLk, algOp1Or2, fillCond(13, 0, 2)},
	{[]string{"ble+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 1, 2)},
	{[]string{"beq+"}, "bc", famAaLk, algOp1Or2, fillCond(13, 2, 2)},
	{[]string{"bge+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 0, 2)},
	{[]string{"bgt+"}, "bc", famAaLk, algOp1Or2, fillCond(13, 1, 2)},
	{[]string{"bnl+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 0, 2)},
	{[]string{"bne+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 2, 2)},
	{[]string{"bng+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 1, 2)},
	{[]string{"bso+"}, "bc", famAaLk, algOp1Or2, fillCond(13, 3, 2)},
	{[]string{"bns+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 3, 2)},
	{[]string{"bun+"}, "bc", famAaLk, algOp1Or2, fillCond(13, 3, 2)},
	{[]string{"bnu+"}, "bc", famAaLk, algOp1Or2, fillCond(5, 3, 2)},

	// Condition-comparison branches to link register
	{[]string{"bltlr", "bltlr-"}, "bclr", famLk, algNoneOrOp1, fillCond(12, 0, 1)},
	{[]string{"blelr", "blelr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 1, 1)},
	{[]string{"beqlr", "beqlr-"}, "bclr", famLk, algNoneOrOp1, fillCond(12, 2, 1)},
	{[]string{"bgelr", "bgelr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 0, 1)},
	{[]string{"bgtlr", "bgtlr-"}, "bclr", famLk, algNoneOrOp1, fillCond(12, 1, 1)},
	{[]string{"bnllr", "bnllr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 0, 1)},
	{[]string{"bnelr", "bnelr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 2, 1)},
	{[]string{"bnglr", "bnglr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 1, 1)},
	{[]string{"bsolr", "bsolr-"}, "bclr", famLk, algNoneOrOp1, fillCond(12, 3, 1)},
	{[]string{"bnslr", "bnslr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 3, 1)},
	{[]string{"bunlr", "bunlr-"}, "bclr", famLk, algNoneOrOp1, fillCond(12, 3, 1)},
	{[]string{"bnulr", "bnulr-"}, "bclr", famLk, algNoneOrOp1, fillCond(4, 3, 1)},
	{[]string{"bltlr+"}, "bclr", famLk, algNoneOrOp1, fillCond(13, 0, 1)},
	{[]string{"blelr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 1, 1)},
	{[]string{"beqlr+"}, "bclr", famLk, algNoneOrOp1, fillCond(13, 2, 1)},
	{[]string{"bgelr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 0, 1)},
	{[]string{"bgtlr+"}, "bclr", famLk, algNoneOrOp1, fillCond(13, 1, 1)},
	{[]string{"bnllr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 0, 1)},
	{[]string{"bnelr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 2, 1)},
	{[]string{"bnglr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 1, 1)},
	{[]string{"bsolr+"}, "bclr", famLk, algNoneOrOp1, fillCond(13, 3, 1)},
	{[]string{"bnslr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 3, 1)},
	{[]string{"bunlr+"}, "bclr", famLk, algNoneOrOp1, fillCond(13, 3, 1)},
	{[]string{"bnulr+"}, "bclr", famLk, algNoneOrOp1, fillCond(5, 3, 1)},

	// Condition-comparison branches to count register
	{[]string{"bltctr", "bltctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(12, 0, 1)},
	{[]string{"blectr", "blectr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 1, 1)},
	{[]string{"beqctr", "beqctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(12, 2, 1)},
	{[]string{"bgectr", "bgectr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 0, 1)},
	{[]string{"bgtctr", "bgtctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(12, 1, 1)},
	{[]string{"bnlctr", "bnlctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 0, 1)},
	{[]string{"bnectr", "bnectr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 2, 1)},
	{[]string{"bngctr", "bngctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 1, 1)},
	{[]string{"bsoctr", "bsoctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(12, 3, 1)},
	{[]string{"bnsctr", "bnsctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 3, 1)},
	{[]string{"bunctr", "bunctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(12, 3, 1)},
	{[]string{"bnuctr", "bnuctr-"}, "bcctr", famLk, algNoneOrOp1, fillCond(4, 3, 1)},
	{[]string{"bltctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(13, 0, 1)},
	{[]string{"blectr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 1, 1)},
	{[]string{"beqctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(13, 2, 1)},
	{[]string{"bgectr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 0, 1)},
	{[]string{"bgtctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(13, 1, 1)},
	{[]string{"bnlctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 0, 1)},
	{[]string{"bnectr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 2, 1)},
	{[]string{"bngctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 1, 1)},
	{[]string{"bsoctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(13, 3, 1)},
	{[]string{"bnsctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 3, 1)},
	{[]string{"bunctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(13, 3, 1)},
	{[]string{"bnuctr+"}, "bcctr", famLk, algNoneOrOp1, fillCond(5, 3, 1)},

	// Condition register sugar
	{[]string{"crset"}, "creqv", famPlain, algOp1, dupCrBit},
	{[]string{"crclr"}, "crxor", famPlain, algOp1, dupCrBit},
	{[]string{"crmove"}, "cror", famPlain, algOp2, copyMiddle},
	{[]string{"crnot"}, "crnor", famPlain, algOp2, copyMiddle},

	// Trap sugar
	{[]string{"twlt"}, "tw", famPlain, algOp2, insertAt(0, 16)},
	{[]string{"twlti"}, "twi", famPlain, algOp2, insertAt(0, 16)},
	{[]string{"twle"}, "tw", famPlain, algOp2, insertAt(0, 20)},
	{[]string{"twlei"}, "twi", famPlain, algOp2, insertAt(0, 20)},
	{[]string{"tweq"}, "tw", famPlain, algOp2, insertAt(0, 4)},
	{[]string{"tweqi"}, "twi", famPlain, algOp2, insertAt(0, 4)},
	{[]string{"twge"}, "tw", famPlain, algOp2, insertAt(0, 12)},
	{[]string{"twgei"}, "twi", famPlain, algOp2, insertAt(0, 12)},
	{[]string{"twgt"}, "tw", famPlain, algOp2, insertAt(0, 8)},
	{[]string{"twgti"}, "twi", famPlain, algOp2, insertAt(0, 8)},
	{[]string{"twnl"}, "tw", famPlain, algOp2, insertAt(0, 12)},
	{[]string{"twnli"}, "twi", famPlain, algOp2, insertAt(0, 12)},
	{[]string{"twne"}, "tw", famPlain, algOp2, insertAt(0, 24)},
	{[]string{"twnei"}, "twi", famPlain, algOp2, insertAt(0, 24)},
	{[]string{"twng"}, "tw", famPlain, algOp2, insertAt(0, 20)},
	{[]string{"twngi"}, "twi", famPlain, algOp2, insertAt(0, 20)},
	{[]string{"twllt"}, "tw", famPlain, algOp2, insertAt(0, 2)},
	{[]string{"twllti"}, "twi", famPlain, algOp2, insertAt(0, 2)},
	{[]string{"twlle"}, "tw", famPlain, algOp2, insertAt(0, 6)},
	{[]string{"twllei"}, "twi", famPlain, algOp2, insertAt(0, 6)},
	{[]string{"twlge"}, "tw", famPlain, algOp2, insertAt(0, 5)},
	{[]string{"twlgei"}, "twi", famPlain, algOp2, insertAt(0, 5)},
	{[]string{"twlgt"}, "tw", famPlain, algOp2, insertAt(0, 1)},
	{[]string{"twlgti"}, "twi", famPlain, algOp2, insertAt(0, 1)},
	{[]string{"twlnl"}, "tw", famPlain, algOp2, insertAt(0, 5)},
	{[]string{"twlnli"}, "twi", famPlain, algOp2, insertAt(0, 5)},
	{[]string{"twlng"}, "tw", famPlain, algOp2, insertAt(0, 6)},
	{[]string{"twlngi"}, "twi", famPlain, algOp2, insertAt(0, 6)},
	{[]string{"trap"}, "tw", famPlain, algNone, trapAlways},

	// Special purpose register move aliases
	{[]string{"mtxer"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(1)},
	{[]string{"mfxer"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(1)},
	{[]string{"mtlr"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(8)},
	{[]string{"mflr"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(8)},
	{[]string{"mtctr"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(9)},
	{[]string{"mfctr"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(9)},
	{[]string{"mtdsisr"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(18)},
	{[]string{"mfdsisr"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(18)},
	{[]string{"mtdar"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(19)},
	{[]string{"mfdar"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(19)},
	{[]string{"mtdec"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(22)},
	{[]string{"mfdec"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(22)},
	{[]string{"mtsdr1"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(25)},
	{[]string{"mfsdr1"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(25)},
	{[]string{"mtsrr0"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(26)},
	{[]string{"mfsrr0"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(26)},
	{[]string{"mtsrr1"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(27)},
	{[]string{"mfsrr1"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(27)},
	{[]string{"mtasr"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(280)},
	{[]string{"mfasr"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(280)},
	{[]string{"mtear"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(282)},
	{[]string{"mfear"}, "mfspr_nobitswap", famPlain, algOp1, mfSpr(282)},

	// Time base access. Writes address the TBL/TBU SPRs; reads go through
	// the mftb path with its own register numbers.
	{[]string{"mttbl"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(284)},
	{[]string{"mftbl"}, "mftb_nobitswap", famPlain, algOp1, mfSpr(268)},
	{[]string{"mttbu"}, "mtspr_nobitswap", famPlain, algOp1, mtSpr(285)},
	{[]string{"mftbu"}, "mftb_nobitswap", famPlain, algOp1, mfSpr(269)},

	// Indexed SPRG and BAT moves
	{[]string{"mtsprg"}, "mtspr_nobitswap", famPlain, algOp2, sprgAt(0)},
	{[]string{"mfsprg"}, "mfspr_nobitswap", famPlain, algOp2, sprgAt(1)},
	{[]string{"mtibatu"}, "mtspr_nobitswap", famPlain, algOp2, batAt(0, 528)},
	{[]string{"mfibatu"}, "mfspr_nobitswap", famPlain, algOp2, batAt(1, 528)},
	{[]string{"mtibatl"}, "mtspr_nobitswap", famPlain, algOp2, batAt(0, 529)},
	{[]string{"mfibatl"}, "mfspr_nobitswap", famPlain, algOp2, batAt(1, 529)},
	{[]string{"mtdbatu"}, "mtspr_nobitswap", famPlain, algOp2, batAt(0, 536)},
	{[]string{"mfdbatu"}, "mfspr_nobitswap", famPlain, algOp2, batAt(1, 536)},
	{[]string{"mtdbatl"}, "mtspr_nobitswap", famPlain, algOp2, batAt(0, 537)},
	{[]string{"mfdbatl"}, "mfspr_nobitswap", famPlain, algOp2, batAt(1, 537)},

	// General SPR moves with a written register number
	{[]string{"mtspr"}, "mtspr_nobitswap", famPlain, algOp2, bitswapAt(0)},
	{[]string{"mfspr"}, "mfspr_nobitswap", famPlain, algOp2, bitswapAt(1)},
	{[]string{"mftb"}, "mftb_nobitswap", famPlain, algOp2, bitswapAt(1)},

	// Miscellaneous
	{[]string{"nop"}, "ori", famPlain, algNone, oriZero},
	{[]string{"li"}, "addi", famPlain, algOp2, insertAt(1, 0)},
	{[]string{"lis"}, "addis", famPlain, algOp2, insertAt(1, 0)},
	{[]string{"la"}, "addi", famPlain, algOp1Off1, swapRegs},
	{[]string{"mr"}, "or", famRc, algOp2, copyMiddle},
	{[]string{"not"}, "nor", famRc, algOp2, copyMiddle},
	{[]string{"mtcr"}, "mtcrf", famPlain, algOp1, insertAt(0, 0xff)},
}

var (
	extendedTokens = map[string]ParseInfo{}
	extendedDescs  []extendedMnemonicDesc
)

func buildExtendedTables() {
	extendedDescs = make([]extendedMnemonicDesc, len(extendedMnemonics)*variantsPerMnemonic)
	for row, entry := range extendedMnemonics {
		baseIndex := mnemonicTokens[entry.base].index
		for variant, slot := range entry.family.slots() {
			if !slot.valid {
				continue
			}
			index := row*variantsPerMnemonic + variant
			extendedDescs[index] = extendedMnemonicDesc{
				mnemonicIndex: baseIndex + variant,
				transform:     entry.transform,
			}
			for _, name := range entry.names {
				extendedTokens[name+slot.suffix] = ParseInfo{index: index, alg: entry.alg}
			}
		}
	}
}
