package translate

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("line 3 bad", From("line %d %v", 3, "bad"))
	assert.Equal("halt", From("halt"))
}

func TestError(t *testing.T) {
	assert := assert.New(t)

	err := Error("register %d out of range", 7)
	assert.EqualError(err, "register 7 out of range")
}

func TestNewPrinter(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	p := newPrinter(nil, errors.New("no LANG"))
	assert.Contains(buf.String(), "elfcode: locale: no LANG")
	assert.Equal("r0 = 6", p.Sprintf("r0 = %d", 6))

	buf.Reset()
	p = newPrinter([]string{"en-GB"}, nil)
	assert.Empty(buf.String())
	assert.Equal("halt", p.Sprintf("halt"))
}
