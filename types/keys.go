package types

import (
	"fmt"
	"math"
)

/*
CoordKey packs a global matrix coordinate (row, col) into a single uint64 so
that a set of registered nonzero locations can be stored in a flat hash set
and recovered in row-major order by sorting the keys as plain integers.
Unlike an edge key, the pair is ordered: (row, col) and (col, row) are
distinct coordinates.
*/
type CoordKey uint64

func NewCoordKey(row, col int) (packed CoordKey) {
	var (
		limit = math.MaxUint32
	)
	if row < 0 || row > limit || col < 0 || col > limit {
		panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
			row, col))
	}
	packed = CoordKey(col + row<<32)
	return
}

func (ck CoordKey) RowCol() (row, col int) {
	row = int(ck >> 32)
	col = int(ck - CoordKey(row)<<32)
	return
}

/*
MarkerTag labels a boundary edge or a volume region. Tag 0 is reserved for
"interior, untagged": a surface form never assembles on an edge carrying
tag 0, and a volume region tagged 0 only matches forms flagged to assemble
everywhere.
*/
type MarkerTag int

const MarkerNone MarkerTag = 0

func (m MarkerTag) IsTagged() bool {
	return m != MarkerNone
}

func (m MarkerTag) String() string {
	if m == MarkerNone {
		return "untagged"
	}
	return fmt.Sprintf("marker-%d", int(m))
}
