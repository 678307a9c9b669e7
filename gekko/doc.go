// Package gekko implements an assembler for the PowerPC "Gekko/Broadway"
// instruction set used by the GameCube and Wii CPU family.
//
// Assembly source is translated by a lexer, an event-driven recursive descent
// parser, a two-pass symbolic IR builder, and an instruction encoder into
// address-tagged blocks of big-endian machine code. The parser dispatches
// syntactic events to a Visitor, so the same grammar drives both code
// generation and external consumers such as syntax highlighters.
//
// The full basic mnemonic set (including the paired-single ps_* family) and
// the customary extended mnemonics are supported, along with data directives,
// labels, .defvar constants, PC-relative conversion, and the @ha/@l half-word
// extractors.
package gekko
