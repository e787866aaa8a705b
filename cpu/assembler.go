// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":                "0",
	"REGISTER_COUNT":        fmt.Sprintf("%d", REGISTER_COUNT),
	"SAMPLE_REGISTER_COUNT": fmt.Sprintf("%d", SAMPLE_REGISTER_COUNT),
}

var (
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Macro is a .macro definition.
type Macro struct {
	LineNo int      // Line number of the first macro body line.
	Args   []string // Argument names, bound as equates during expansion.
	Lines  []string // Body lines.
}

// link is an operand naming a label that is resolved after the last line.
type link struct {
	index   int // Index into Opcode.
	operand int // 0, 1 or 2 for A, B or C.
	label   string
}

// Assembler is a single pass macro assembler for elfcode programs.
type Assembler struct {
	Verbose bool        // If set, verbosely logs the assembler actions.
	Logger  *zap.Logger // Logger for verbose mode.
	Opcode  []Opcode    // List of generated opcodes.
	Bound   int         // Bound register from the #ip directive.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
	Label     map[string]int    // Map of labels to instruction addresses.
	Macro     map[string]*Macro // Map of macros.
	hasBound  bool
	links     []link
	expanding map[string]bool
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint64, err error) {
	value, err = strconv.ParseUint(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// parenEval evaluates a $(...) expression at assembly time. Integer equates
// and labels defined so far are visible to the expression as starlark globals.
func (asm *Assembler) parenEval(expr string) (value uint64, err error) {
	globals := starlark.StringDict{}
	for name, text := range asm.Equate {
		if n, err := asm.valueOf(text); err == nil {
			globals[name] = starlark.MakeUint64(n)
		}
	}
	for name, ip := range asm.Label {
		globals[name] = starlark.MakeInt(ip)
	}

	thread := &starlark.Thread{Name: "asm"}
	result, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "expr", expr, globals)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}

	num, ok := result.(starlark.Int)
	if ok {
		value, ok = num.Uint64()
	}
	if !ok {
		err = ErrParseExpression(expr)
	}

	return
}

// parseBound handles the "#ip BOUND" directive.
func (asm *Assembler) parseBound(words []string) (err error) {
	if len(words) != 2 {
		return ErrBoundSyntax
	}
	if asm.hasBound {
		return ErrBoundDuplicate
	}

	word := words[1]
	if equate, ok := asm.Equate[word]; ok {
		word = equate
	}
	bound, err := asm.valueOf(word)
	if err != nil {
		return
	}
	// Large values must not alias NO_BOUND.
	if bound > math.MaxInt32 {
		return errors.Join(ErrBoundSyntax, ErrBoundRange)
	}

	asm.Bound = int(bound)
	asm.hasBound = true
	return
}

// expand expands a macro invocation at line lineno.
func (asm *Assembler) expand(name string, macro *Macro, args []string, lineno int) (err error) {
	if len(args) != len(macro.Args) {
		return ErrMacroSyntax
	}
	if asm.expanding[name] {
		return ErrMacroRecursive
	}
	asm.expanding[name] = true
	defer delete(asm.expanding, name)

	// Arguments are equates for the duration of the expansion.
	saved := maps.Clone(asm.Equate)
	defer func() { asm.Equate = saved }()
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}

	// '@' makes labels local to this invocation.
	local := fmt.Sprintf("%v_%d_", name, lineno)

	for n, line := range macro.Lines {
		bodyLine := macro.LineNo + n
		line = strings.ReplaceAll(line, "@", local)

		var words []string
		words, err = asm.parseLine(line, bodyLine)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			return &ErrMacro{Macro: name, LineNo: bodyLine, Err: err}
		}
	}

	return
}

// parseLine expands equates and expressions in a line, and handles
// directives, labels and macro invocations. Returns the remaining
// instruction words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// #ip BOUND
	if words[0] == "#ip" {
		err = asm.parseBound(words)
		words = words[:0]
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// LABEL: ...
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !reLabel.MatchString(label) {
			err = ErrLabelSyntax
			return
		}
		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = len(asm.Opcode)
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// MACRO arg...
	if macro, ok := asm.Macro[words[0]]; ok {
		err = asm.expand(words[0], macro, words[1:], lineno)
		words = words[:0]
		return
	}

	return
}

// parseWords evaluates the words of an instruction line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	op, ok := ParseOp(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	if len(words) != 4 {
		err = ErrOperandCount
		return
	}

	index := len(asm.Opcode)

	var args [3]uint64
	for n, word := range words[1:] {
		if ip, ok := asm.Label[word]; ok {
			args[n] = uint64(ip)
			continue
		}
		args[n], err = asm.valueOf(word)
		if err != nil && reLabel.MatchString(word) {
			// Forward reference; resolved once every label is known.
			asm.links = append(asm.links, link{index: index, operand: n, label: word})
			err = nil
		}
		if err != nil {
			return
		}
	}

	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo:      lineno,
		Words:       slices.Clone(words),
		Instruction: MakeInstruction(op, args[0], args[1], args[2]),
	})

	return
}

// resolve patches forward label references into their opcodes.
func (asm *Assembler) resolve() (lineno int, line string, err error) {
	for _, ln := range asm.links {
		op := &asm.Opcode[ln.index]
		ip, ok := asm.Label[ln.label]
		if !ok {
			return op.LineNo, strings.Join(op.Words, " "), ErrLabelMissing(ln.label)
		}
		switch ln.operand {
		case 0:
			op.A = uint64(ip)
		case 1:
			op.B = uint64(ip)
		case 2:
			op.C = uint64(ip)
		}
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Bound = NO_BOUND
	asm.hasBound = false
	asm.links = nil
	asm.expanding = make(map[string]bool)
	asm.Label = make(map[string]int)
	asm.Macro = make(map[string]*Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	logger := asm.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			logger.Debug("asm: line", zap.Int("lineno", lineno), zap.String("text", text))
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			switch {
			case macro != nil:
				err = ErrMacroNesting
			case len(words) < 2:
				err = ErrMacroSyntax
			case asm.Macro[words[1]] != nil:
				err = ErrMacroDuplicate
			}
			if err != nil {
				return
			}
			macro = &Macro{LineNo: lineno + 1, Args: words[2:]}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	lineno, line, err = asm.resolve()
	if err != nil {
		return
	}

	prog = &Program{
		Bound:   asm.Bound,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// ParseString is a convenience wrapper around Parse.
func (asm *Assembler) ParseString(text string) (prog *Program, err error) {
	return asm.Parse(strings.NewReader(text))
}
