package internal

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterRange(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]uint64{5, 6, 7}, slices.Collect(IterRange(5, 3)))
	assert.Empty(slices.Collect(IterRange(5, 0)))
}

func TestIterSeqConcat(t *testing.T) {
	assert := assert.New(t)

	all := IterSeqConcat(IterRange(0, 2), IterRange(10, 2))
	assert.Equal([]uint64{0, 1, 10, 11}, slices.Collect(all))

	var first []uint64
	for v := range all {
		if v == 10 {
			break
		}
		first = append(first, v)
	}
	assert.Equal([]uint64{0, 1}, first)
}
