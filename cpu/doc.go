// Package cpu implements the main processor and the assembler for the
// PDS-1 simulator.
//
// The main processor is a 16-bit accumulator machine with a program
// counter (PC), accumulator (AC), instruction register (IR) and a one bit
// Link used for carries and rotates. It addresses 4096 words of core
// memory shared with the display processor, and reaches devices through
// IOT instructions.
//
// The assembler is a two pass, fail-soft assembler for both the main and
// display processor mnemonics, writing directly into core memory. It
// supports labels, .ORG, .WORD, .EQU and compile-time $(...) expressions.
package cpu
