package infer

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ezrec/elfcode/cpu"
)

var reRegisters = regexp.MustCompile(`^(Before|After):\s*\[([^\]]*)\]$`)

// Input is a parsed sample file: the samples followed by a program of raw
// instructions.
type Input struct {
	Samples []Sample
	Program []RawInstruction
}

// parseRegisters parses a "Before: [a, b, c, d]" style line.
func parseRegisters(line string, label string) (regs cpu.Registers, err error) {
	match := reRegisters.FindStringSubmatch(line)
	if match == nil || match[1] != label {
		if label == "Before" {
			err = ErrSampleBefore
		} else {
			err = ErrSampleAfter
		}
		return
	}

	for _, word := range strings.Split(match[2], ",") {
		word = strings.TrimSpace(word)
		var value uint64
		value, err = strconv.ParseUint(word, 10, 64)
		if err != nil {
			err = cpu.ErrParseNumber(word)
			return
		}
		regs = append(regs, value)
	}

	return
}

// parseRaw parses a "<code> <a> <b> <c>" line.
func parseRaw(line string, lineno int) (raw RawInstruction, err error) {
	words := strings.Fields(line)
	if len(words) != 4 {
		err = ErrRawInstruction
		return
	}

	var values [4]uint64
	for n, word := range words {
		values[n], err = strconv.ParseUint(word, 10, 64)
		if err != nil {
			err = cpu.ErrParseNumber(word)
			return
		}
	}

	raw = RawInstruction{
		LineNo: lineno,
		Code:   values[0],
		A:      values[1],
		B:      values[2],
		C:      values[3],
	}
	return
}

// Parse reads groups of Before/instruction/After sample lines, then the raw
// instructions of the companion program. Blank lines are ignored.
func Parse(input io.Reader) (in *Input, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			in = nil
			err = &cpu.ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	next := func() bool {
		for scanner.Scan() {
			lineno++
			line = strings.TrimSpace(scanner.Text())
			if len(line) > 0 {
				return true
			}
		}
		return false
	}

	in = &Input{}

	for next() {
		if !strings.HasPrefix(line, "Before:") {
			var raw RawInstruction
			raw, err = parseRaw(line, lineno)
			if err != nil {
				return
			}
			in.Program = append(in.Program, raw)
			continue
		}

		var s Sample
		s.Before, err = parseRegisters(line, "Before")
		if err != nil {
			return
		}

		if !next() {
			err = ErrRawInstruction
			return
		}
		s.Instruction, err = parseRaw(line, lineno)
		if err != nil {
			return
		}

		if !next() {
			err = ErrSampleAfter
			return
		}
		s.After, err = parseRegisters(line, "After")
		if err != nil {
			return
		}

		if len(s.Before) != len(s.After) {
			err = ErrSampleSize
			return
		}

		in.Samples = append(in.Samples, s)
	}

	err = scanner.Err()
	return
}
