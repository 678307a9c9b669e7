// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

// instError tags an encoding failure with the instruction's source line
// and the span of the operand it refers to.
func instError(inst irInstruction, span Span, message string) *AssemblerError {
	return &AssemblerError{
		Message:    message,
		SourceLine: inst.rawText,
		Line:       inst.lineNumber,
		Col:        span.Col,
		Len:        span.Len,
	}
}

func fitErrorMessage(od OperandDesc, val uint32) string {
	if val&od.TruncBits() != 0 {
		return f("Value 0x%x is not aligned to %d bytes", val, od.TruncBits()+1)
	}
	if od.Signed && val >= 0x80000000 {
		return f("Value %d is too small for this operand (minimum %d)",
			int32(val), int32(od.MinVal()))
	}
	return f("Value 0x%x is too large for this operand (maximum 0x%x)", val, od.MaxVal())
}

// encodeInstruction packs one instruction into its 32-bit word. Extended
// mnemonics rewrite the operand list first and then encode through their
// base desc slot, so synthesized operands face the same range checks as
// written ones.
func encodeInstruction(inst irInstruction, pool []taggedOperand) (uint32, *AssemblerError) {
	var list OperandList
	list.fill(pool[inst.opIndex : inst.opIndex+inst.opCount])

	index := inst.mnemonicIndex
	if inst.extended {
		extDesc := extendedDescs[inst.mnemonicIndex]
		index = extDesc.mnemonicIndex
		if extDesc.transform != nil {
			extDesc.transform(&list)
		}
	}

	desc := mnemonicDescs[index]
	if desc.initial == 0 {
		return 0, instError(inst, Span{}, f("Unknown instruction variant"))
	}
	if list.overfill || list.Count() != desc.operandCount {
		return 0, instError(inst, Span{},
			f("Expected %d operands, but found %d", desc.operandCount, list.Count()))
	}

	word := desc.initial
	for i := 0; i < desc.operandCount; i++ {
		od := desc.operands[i]
		val := list.Value(i)
		if !od.Fits(val) {
			return 0, instError(inst, list.span(i), fitErrorMessage(od, val))
		}
		word |= od.Fit(val)
	}
	return word, nil
}
