package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterRange yields count consecutive values starting at from.
func IterRange(from, count uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for n := range count {
			if !yield(from + n) {
				return
			}
		}
	}
}
