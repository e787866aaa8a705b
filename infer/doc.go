// Package infer recovers the identity of numeric opcodes from observed
// samples of their behaviour.
//
// Each Sample records the register file before and after a single raw
// instruction executed. An operation kind is consistent with a sample if
// applying it reproduces the sample exactly. Resolve narrows the candidate
// kinds of every raw opcode by constraint propagation until each raw opcode
// maps to exactly one kind, or reports a stall when the samples do not
// determine a unique mapping.
package infer
