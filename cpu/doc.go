// Package cpu implements the register machine and assembler for the elfcode
// wrist device.
//
// The CPU consists of a small file of unsigned 64-bit registers, an
// instruction pointer, and sixteen operations (addr through eqrr) that each
// read up to two operands and write one destination register. A program may
// bind the instruction pointer to one of the registers, in which case
// instructions can jump by writing to that register.
//
// The assembler reads the textual program format: an optional "#ip N"
// directive followed by one "<op> <a> <b> <c>" instruction per line, with
// equates and compile-time expression evaluation.
package cpu
