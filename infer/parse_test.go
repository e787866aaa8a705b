package infer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/elfcode/cpu"
)

func TestParse(t *testing.T) {
	assert := assert.New(t)

	text := []string{
		"Before: [3, 2, 1, 1]",
		"9 2 1 2",
		"After:  [3, 2, 2, 1]",
		"",
		"Before: [1, 2, 3, 4]",
		"0 2 3 0",
		"After:  [7, 2, 3, 4]",
		"",
		"",
		"",
		"7 3 2 0",
		"7 2 1 1",
	}

	in, err := Parse(strings.NewReader(strings.Join(text, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Len(in.Samples, 2)
	assert.Equal(threeWaySample.Before, in.Samples[0].Before)
	assert.Equal(threeWaySample.After, in.Samples[0].After)
	assert.Equal(RawInstruction{LineNo: 2, Code: 9, A: 2, B: 1, C: 2}, in.Samples[0].Instruction)
	assert.Equal(cpu.Registers{7, 2, 3, 4}, in.Samples[1].After)

	assert.Equal([]RawInstruction{
		{LineNo: 11, Code: 7, A: 3, B: 2, C: 0},
		{LineNo: 12, Code: 7, A: 2, B: 1, C: 1},
	}, in.Program)

	assert.Equal(1, Ambiguous(in.Samples, 3))
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		text   []string
		lineno int
		err    error
	}){
		{"after", []string{"Before: [1, 2]", "0 0 0 0", "Later: [1, 2]"}, 3, ErrSampleAfter},
		{"after-missing", []string{"Before: [1, 2]", "0 0 0 0"}, 2, ErrSampleAfter},
		{"raw", []string{"Before: [1, 2]", "0 0 0", "After: [1, 2]"}, 2, ErrRawInstruction},
		{"raw-missing", []string{"Before: [1, 2]"}, 1, ErrRawInstruction},
		{"size", []string{"Before: [1, 2]", "0 0 0 0", "After: [1, 2, 3]"}, 3, ErrSampleSize},
		{"before", []string{"Before: 1, 2"}, 1, ErrSampleBefore},
		{"number", []string{"Before: [1, x]"}, 1, cpu.ErrParseNumber("x")},
		{"program", []string{"1 2 3 four"}, 1, cpu.ErrParseNumber("four")},
	}

	for _, entry := range table {
		in, err := Parse(strings.NewReader(strings.Join(entry.text, "\n")))
		assert.Nil(in, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *cpu.ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}
