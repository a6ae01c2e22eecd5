package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumEquals(t *testing.T) {
	assert.NotPanics(t, func() {
		SumEquals([]uint32{3, 2, 2}, 7, "seats")
	})
	assert.Panics(t, func() {
		SumEquals([]uint32{3, 2, 1}, 7, "seats")
	})
}

func TestSortedStrings(t *testing.T) {
	assert.NotPanics(t, func() {
		SortedStrings([]string{"A:1", "B:2", "C:3"}, "units")
	})
	assert.Panics(t, func() {
		SortedStrings([]string{"B:2", "A:1"}, "units")
	})
}
