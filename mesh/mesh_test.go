package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gofea/types"
)

func TestEdgeKey(t *testing.T) {
	ek := NewEdgeKey([2]int{1, 0})
	assert.Equal(t, EdgeKey(1<<32), ek)
	assert.Equal(t, [2]int{0, 1}, ek.GetVertices())

	ek = NewEdgeKey([2]int{0, 1})
	assert.Equal(t, EdgeKey(1<<32), ek)
	assert.Equal(t, [2]int{0, 1}, ek.GetVertices())

	ek = NewEdgeKey([2]int{100, 100001})
	assert.Equal(t, [2]int{100, 100001}, ek.GetVertices())

	assert.Panics(t, func() { NewEdgeKey([2]int{-1, 0}) })
}

func TestMeshConstruction(t *testing.T) {
	{ // Two triangles sharing the edge (1,2)
		msh := NewMesh()
		k0 := msh.AddElement([3]int{0, 1, 2})
		k1 := msh.AddElement([3]int{1, 3, 2})
		assert.Equal(t, ElementID(0), k0)
		assert.Equal(t, ElementID(1), k1)
		assert.Equal(t, 2, msh.NumElements())
		assert.Equal(t, 5, len(msh.Edges))

		shared := msh.Edges[NewEdgeKey([2]int{1, 2})]
		assert.Equal(t, uint8(2), shared.NumConnectedElems)

		outer := msh.Edges[NewEdgeKey([2]int{0, 1})]
		assert.Equal(t, uint8(1), outer.NumConnectedElems)
	}
	{ // Markers and marker counts
		msh := NewMesh()
		msh.AddElement([3]int{0, 1, 2})
		assert.Equal(t, 1, msh.NumBoundaryMarkers()) // only the untagged slot
		assert.NoError(t, msh.SetBoundaryMarker([2]int{0, 1}, 3))
		assert.Equal(t, 4, msh.NumBoundaryMarkers())
		assert.Equal(t, types.MarkerTag(3), msh.EdgeMarker(0, 0))
		assert.Equal(t, types.MarkerNone, msh.EdgeMarker(0, 1))

		msh.SetVolumeMarker(0, 2)
		assert.Equal(t, 3, msh.NumVolumeMarkers())
		assert.Equal(t, types.MarkerTag(2), msh.VolumeMarker(0))

		// Tagging a nonexistent edge is a topology error
		err := msh.SetBoundaryMarker([2]int{5, 6}, 1)
		assert.Error(t, err)
		assert.IsType(t, &TopologyError{}, err)
	}
}

func TestNeighborSearch(t *testing.T) {
	{ // Conforming interface: exactly one neighbor each way
		msh := NewMesh()
		k0 := msh.AddElement([3]int{0, 1, 2})
		k1 := msh.AddElement([3]int{1, 3, 2})

		ns := NewNeighborSearch(k0, msh)
		// Edge 1 of k0 is (1,2), the shared edge
		assert.NoError(t, ns.SetActiveEdge(1))
		assert.Equal(t, []ElementID{k1}, ns.GetNeighbors())

		ns = NewNeighborSearch(k1, msh)
		// Edge 2 of k1 is (2,1), same shared edge
		assert.NoError(t, ns.SetActiveEdge(2))
		assert.Equal(t, []ElementID{k0}, ns.GetNeighbors())
	}
	{ // Boundary edge with a marker: empty, no error, even without ignore mode
		msh := NewMesh()
		k0 := msh.AddElement([3]int{0, 1, 2})
		assert.NoError(t, msh.SetBoundaryMarker([2]int{0, 1}, 1))
		ns := NewNeighborSearch(k0, msh)
		assert.NoError(t, ns.SetActiveEdge(0))
		assert.Equal(t, 0, ns.NumNeighbors())
	}
	{ // Untagged edge with no opposite side: error unless ignore mode is on
		msh := NewMesh()
		k0 := msh.AddElement([3]int{0, 1, 2})
		ns := NewNeighborSearch(k0, msh)
		err := ns.SetActiveEdge(0)
		assert.Error(t, err)
		assert.IsType(t, &TopologyError{}, err)

		ns.SetIgnoreErrors(true)
		assert.NoError(t, ns.SetActiveEdge(0))
		assert.Equal(t, 0, ns.NumNeighbors())
	}
	{ // Non-conforming interface: coarse edge (0,2) split at 4, two fine
		// triangles on the other side
		msh := NewMesh()
		coarse := msh.AddElement([3]int{0, 1, 2})
		assert.NoError(t, msh.SplitEdge([2]int{0, 2}, 4))
		fine0 := msh.AddElement([3]int{0, 4, 3})
		fine1 := msh.AddElement([3]int{4, 2, 3})

		// From the coarse side: both fine elements
		ns := NewNeighborSearch(coarse, msh)
		assert.NoError(t, ns.SetActiveEdge(2)) // edge (2,0)
		assert.ElementsMatch(t, []ElementID{fine0, fine1}, ns.GetNeighbors())

		// From either fine element: the coarse one
		ns = NewNeighborSearch(fine0, msh)
		assert.NoError(t, ns.SetActiveEdge(0)) // edge (0,4), child of (0,2)
		assert.Equal(t, []ElementID{coarse}, ns.GetNeighbors())

		ns = NewNeighborSearch(fine1, msh)
		assert.NoError(t, ns.SetActiveEdge(0)) // edge (4,2), child of (0,2)
		assert.Equal(t, []ElementID{coarse}, ns.GetNeighbors())
	}
}

func TestUnitSquare(t *testing.T) {
	msh := NewUnitSquare(2)
	assert.Equal(t, 8, msh.NumElements())
	// 4 sides of 2 edges each carry markers 1..4; minimum unused marker is 5
	assert.Equal(t, 5, msh.NumBoundaryMarkers())

	// Every element edge resolves: either a neighbor or a tagged boundary
	for k := 0; k < msh.NumElements(); k++ {
		ns := NewNeighborSearch(ElementID(k), msh)
		for ed := 0; ed < 3; ed++ {
			assert.NoError(t, ns.SetActiveEdge(ed))
			if ns.NumNeighbors() == 0 {
				assert.True(t, msh.EdgeMarker(ElementID(k), ed).IsTagged())
			}
		}
	}
}
