package mesh

import (
	"fmt"

	"github.com/notargets/gofea/types"
)

// Side markers assigned by NewUnitSquare, counterclockwise from the bottom.
const (
	MarkerBottom types.MarkerTag = iota + 1
	MarkerRight
	MarkerTop
	MarkerLeft
)

/*
NewUnitSquare creates a structured triangulation of the unit square with n x n
quads, each split into two triangles, and tags the four sides with the
markers above. Vertices are numbered row-major, vertex (i,j) = j*(n+1)+i.
The mesh is purely topological; no coordinates are stored because the
assembler only consumes connectivity.
*/
func NewUnitSquare(n int) (msh *Mesh) {
	if n < 1 {
		panic(fmt.Errorf("unit square subdivision must be at least 1, have %d", n))
	}
	msh = NewMesh()
	var (
		stride = n + 1
		vert   = func(i, j int) int { return j*stride + i }
	)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			var (
				v00 = vert(i, j)
				v10 = vert(i+1, j)
				v01 = vert(i, j+1)
				v11 = vert(i+1, j+1)
			)
			msh.AddElement([3]int{v00, v10, v11})
			msh.AddElement([3]int{v00, v11, v01})
		}
	}
	for i := 0; i < n; i++ {
		// Errors are impossible here: every tagged edge was just created.
		_ = msh.SetBoundaryMarker([2]int{vert(i, 0), vert(i+1, 0)}, MarkerBottom)
		_ = msh.SetBoundaryMarker([2]int{vert(n, i), vert(n, i+1)}, MarkerRight)
		_ = msh.SetBoundaryMarker([2]int{vert(i, n), vert(i+1, n)}, MarkerTop)
		_ = msh.SetBoundaryMarker([2]int{vert(0, i), vert(0, i+1)}, MarkerLeft)
	}
	return
}
