// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package gekko

import (
	"encoding/binary"
)

// Block is a contiguous run of assembled bytes at a fixed virtual
// address. Location directives split a program into multiple blocks.
type Block struct {
	Address uint32
	Bytes   []byte
}

// Assemble assembles source into address-tagged byte blocks, with the
// first block placed at baseAddress. The first failure of either pass
// aborts the assembly; the returned error is an AssemblerError.
func Assemble(source string, baseAddress uint32) ([]Block, error) {
	program, err := parseToIR(source, baseAddress)
	if err != nil {
		return nil, err
	}

	blocks := make([]Block, 0, len(program.blocks))
	for _, irb := range program.blocks {
		block := Block{Address: irb.address}
		for _, c := range irb.chunks {
			switch c := c.(type) {
			case *instChunk:
				for _, inst := range *c {
					word, encErr := encodeInstruction(inst, program.operandPool)
					if encErr != nil {
						return nil, *encErr
					}
					block.Bytes = binary.BigEndian.AppendUint32(block.Bytes, word)
				}
			case *byteChunk:
				block.Bytes = append(block.Bytes, *c...)
			case *padChunk:
				block.Bytes = append(block.Bytes, make([]byte, *c)...)
			}
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
