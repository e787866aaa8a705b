package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(NO_BOUND, prog.Bound)

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("6", asm.Equate["REGISTER_COUNT"])
	assert.Equal("4", asm.Equate["SAMPLE_REGISTER_COUNT"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"#ip 3",
		"",
		"addi 3 16 3 ; jump",
		"  seti 1 0 4",
		"eqrr 5 0 1",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{3, []string{"addi", "3", "16", "3"}, MakeInstruction(OP_ADDI, 3, 16, 3)},
		{4, []string{"seti", "1", "0", "4"}, MakeInstruction(OP_SETI, 1, 0, 4)},
		{5, []string{"eqrr", "5", "0", "1"}, MakeInstruction(OP_EQRR, 5, 0, 1)},
	}

	assert.Equal(3, prog.Bound)
	opEqual(t, expected, prog.Opcodes)

	assert.Equal("#ip 3\naddi 3 16 3\nseti 1 0 4\neqrr 5 0 1\n", prog.String())
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("TARGET", "10551264")

	program := []string{
		".equ IP 2",
		"#ip IP",
		".equ SCRATCH 4",
		"seti $(TARGET // 16) 0 SCRATCH",
		"muli SCRATCH $(1 << 4) SCRATCH",
		"addi IP $(LINENO - 5) IP",
		"seti $(REGISTER_COUNT - 1) 0 0",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(2, prog.Bound)
	assert.Equal(4, prog.Len())
	assert.Equal(MakeInstruction(OP_SETI, 659454, 0, 4), prog.Opcodes[0].Instruction)
	assert.Equal(MakeInstruction(OP_MULI, 4, 16, 4), prog.Opcodes[1].Instruction)
	assert.Equal(MakeInstruction(OP_ADDI, 2, 1, 2), prog.Opcodes[2].Instruction)
	assert.Equal(MakeInstruction(OP_SETI, 5, 0, 0), prog.Opcodes[3].Instruction)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"opcode", []string{"seti 1 0 0", "jmp 1 2 3"}, 2, ErrOpcodeInvalid},
		{"operands", []string{"seti 1 0"}, 1, ErrOperandCount},
		{"extra", []string{"seti 1 0 0 0"}, 1, ErrOperandCount},
		{"bound", []string{"#ip"}, 1, ErrBoundSyntax},
		{"bound-twice", []string{"#ip 0", "#ip 1"}, 2, ErrBoundDuplicate},
		{"equ", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ-twice", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"bound-alias", []string{"#ip 18446744073709551615", "seti 5 0 1"}, 1, ErrBoundRange},
		{"label-missing", []string{"seti 0 0 0", "seti nowhere 0 0"}, 2, ErrLabelMissing("nowhere")},
		{"label-twice", []string{"a: seti 0 0 0", "a: seti 1 0 0"}, 2, ErrLabelDuplicate},
		{"label-syntax", []string{"1a: seti 0 0 0"}, 1, ErrLabelSyntax},
		{"macro-name", []string{".macro"}, 1, ErrMacroSyntax},
		{"macro-lonely", []string{".macro A"}, 1, ErrMacroLonely},
		{"endm", []string{".endm"}, 1, ErrMacroLonelyEndm},
		{"macro-nesting", []string{".macro A", ".macro B"}, 2, ErrMacroNesting},
		{"macro-twice", []string{".macro A", ".endm", ".macro A"}, 3, ErrMacroDuplicate},
		{"macro-args", []string{".macro A X", "seti X 0 0", ".endm", "A"}, 4, ErrMacroSyntax},
		{"macro-recursive", []string{".macro A", "A", ".endm", "A"}, 4, ErrMacroRecursive},
		{"macro-body", []string{".macro A", "jmp 1 2 3", ".endm", "", "A"}, 5, ErrOpcodeInvalid},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}

	asm := &Assembler{}
	prog, err := asm.ParseString("#ip 18446744073709551615\nseti 5 0 1\n")
	assert.ErrorIs(err, ErrBoundSyntax)
	assert.Nil(prog)

	_, err = asm.ParseString(".macro A\njmp 1 2 3\n.endm\nA\n")
	var macro *ErrMacro
	if assert.ErrorAs(err, &macro) {
		assert.Equal("A", macro.Macro)
		assert.Equal(2, macro.LineNo)
	}

	_, err = asm.ParseString("seti -1 0 0")
	assert.ErrorIs(err, ErrParseNumber("-1"))

	_, err = asm.ParseString("seti $(1 +) 0 0")
	assert.ErrorIs(err, ErrParseExpression("1 +"))

	_, err = asm.ParseString("seti $(\"x\") 0 0")
	assert.ErrorIs(err, ErrParseExpression("\"x\""))
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"#ip 4",
		".macro INC REG",
		"addi REG 1 REG",
		".endm",
		"start:  seti 0 0 0",
		"loop:   INC 0",
		"        gtri 0 2 1",
		"        addr 1 4 4",
		"        seti $(loop - 1) 0 4 ; back to loop",
		"        seti end 0 4         ; past the end",
		"end:    seti 99 0 0",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(map[string]int{"start": 0, "loop": 1, "end": 6}, asm.Label)
	assert.Equal(7, prog.Len())
	assert.Equal(MakeInstruction(OP_ADDI, 0, 1, 0), prog.Opcodes[1].Instruction)
	assert.Equal(6, prog.Opcodes[1].LineNo)
	assert.Equal(MakeInstruction(OP_SETI, 0, 0, 4), prog.Opcodes[4].Instruction)
	assert.Equal(MakeInstruction(OP_SETI, 6, 0, 4), prog.Opcodes[5].Instruction)
	assert.Equal([]string{"seti", "end", "0", "4"}, prog.Opcodes[5].Words)

	final, err := Execute(prog, NewRegisters(REGISTER_COUNT), prog.Bound)
	assert.NoError(err)
	assert.Equal(Registers{3, 1, 0, 0, 6, 0}, final)
}

func TestAssemblerMacroLocalLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro SELF",
		"@here: seti @here 0 3",
		".endm",
		"SELF",
		"SELF",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(map[string]int{"SELF_4_here": 0, "SELF_5_here": 1}, asm.Label)
	assert.Equal(MakeInstruction(OP_SETI, 0, 0, 3), prog.Opcodes[0].Instruction)
	assert.Equal(MakeInstruction(OP_SETI, 1, 0, 3), prog.Opcodes[1].Instruction)
	assert.Equal(5, prog.Opcodes[1].LineNo)
}
