package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/gofea/types"
)

type ElementID int32

// ElemAbsent marks a space slot with no element in a traversal state.
const ElemAbsent ElementID = -1

/*
EdgeKey is an always positive number that stores an edge's vertices as indices
in a way that can be compared. An edge between vertices [4] and [0] will always
be stored as [0,4], in the ascending order of the index values.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] < verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices() (verts [2]int) {
	var (
		ekTmp = ek >> 32
	)
	verts[1] = int(ekTmp)
	verts[0] = int(ek - ekTmp*(1<<32))
	return
}

/*
Note that we do not use a slice for the connectivity fields inside of an Edge:
an edge of a conforming triangulation touches at most two elements, so fixed
[2]-arrays avoid the slice header overhead and the cost of append() across
what is the highest-count data structure of the mesh. Non-conforming contact
(a coarse edge facing several refined elements) is represented through the
parent/children linkage instead of widening the arrays.
*/
type Edge struct {
	NumConnectedElems       uint8         // Either 0, 1 or 2
	ConnectedElems          [2]ElementID  // Index numbers of elements connected to this edge
	ConnectedElemEdgeNumber [2]uint8      // For the connected elements, the local edge number (0, 1 or 2)
	Marker                  types.MarkerTag // Boundary marker; 0 for interior edges
	Parent                  EdgeKey       // Set when this edge is a refinement half of a split edge
	HasParent               bool
	Children                [2]EdgeKey // Set when this edge was split by refinement of one side
	HasChildren             bool
}

func (e *Edge) connections(exclude ElementID) (elems []ElementID) {
	for i := 0; i < int(e.NumConnectedElems); i++ {
		if e.ConnectedElems[i] != exclude {
			elems = append(elems, e.ConnectedElems[i])
		}
	}
	return
}

// Mesh is an unstructured triangle mesh: element-to-vertex connectivity plus
// an edge map keyed by packed vertex pairs. Edges carry boundary markers and
// the parent/children linkage produced by non-conforming refinement.
type Mesh struct {
	EToV        [][3]int
	Edges       map[EdgeKey]*Edge
	elemMarkers []types.MarkerTag

	maxBoundaryMarker types.MarkerTag
	maxVolumeMarker   types.MarkerTag
}

func NewMesh() (msh *Mesh) {
	msh = &Mesh{
		Edges: make(map[EdgeKey]*Edge),
	}
	return
}

// AddElement appends a triangle and registers its three edges, connecting
// each to the new element.
func (msh *Mesh) AddElement(verts [3]int) (k ElementID) {
	k = ElementID(len(msh.EToV))
	msh.EToV = append(msh.EToV, verts)
	msh.elemMarkers = append(msh.elemMarkers, types.MarkerNone)
	for ed := 0; ed < 3; ed++ {
		e := msh.getOrCreateEdge(msh.LocalEdgeVerts(k, ed))
		if e.NumConnectedElems > 1 {
			panic(fmt.Errorf("incorrect edge construction, more than two connected elements"))
		}
		e.ConnectedElems[e.NumConnectedElems] = k
		e.ConnectedElemEdgeNumber[e.NumConnectedElems] = uint8(ed)
		e.NumConnectedElems++
	}
	return
}

func (msh *Mesh) getOrCreateEdge(verts [2]int) (e *Edge) {
	var (
		ok bool
		ek = NewEdgeKey(verts)
	)
	if e, ok = msh.Edges[ek]; !ok {
		e = &Edge{}
		msh.Edges[ek] = e
	}
	return
}

func (msh *Mesh) NumElements() (K int) {
	return len(msh.EToV)
}

// NumEdges is the local edge count of an element; triangles only for now.
func (msh *Mesh) NumEdges(k ElementID) (nEdges int) {
	return 3
}

func (msh *Mesh) ElementVerts(k ElementID) (verts [3]int) {
	msh.checkElem(k)
	return msh.EToV[k]
}

// LocalEdgeVerts maps a local edge number to its vertex pair, traversed in
// the element's own orientation.
func (msh *Mesh) LocalEdgeVerts(k ElementID, ed int) (verts [2]int) {
	var (
		tri = msh.ElementVerts(k)
	)
	switch ed {
	case 0:
		verts = [2]int{tri[0], tri[1]}
	case 1:
		verts = [2]int{tri[1], tri[2]}
	case 2:
		verts = [2]int{tri[2], tri[0]}
	default:
		panic(fmt.Errorf("local edge number %d out of range for a triangle", ed))
	}
	return
}

// SetBoundaryMarker tags an existing edge as a boundary with a nonzero marker.
func (msh *Mesh) SetBoundaryMarker(verts [2]int, marker types.MarkerTag) (err error) {
	e, ok := msh.Edges[NewEdgeKey(verts)]
	if !ok {
		return topologyErrorf("cannot tag edge (%d,%d): edge is not part of the mesh",
			verts[0], verts[1])
	}
	e.Marker = marker
	if marker > msh.maxBoundaryMarker {
		msh.maxBoundaryMarker = marker
	}
	return
}

func (msh *Mesh) SetVolumeMarker(k ElementID, marker types.MarkerTag) {
	msh.checkElem(k)
	msh.elemMarkers[k] = marker
	if marker > msh.maxVolumeMarker {
		msh.maxVolumeMarker = marker
	}
}

func (msh *Mesh) VolumeMarker(k ElementID) (marker types.MarkerTag) {
	msh.checkElem(k)
	return msh.elemMarkers[k]
}

func (msh *Mesh) EdgeMarker(k ElementID, ed int) (marker types.MarkerTag) {
	e, ok := msh.Edges[NewEdgeKey(msh.LocalEdgeVerts(k, ed))]
	if !ok {
		panic(fmt.Errorf("element %d edge %d is missing from the edge map", k, ed))
	}
	return e.Marker
}

// NumBoundaryMarkers reports the minimum unused boundary marker, i.e. the
// size a per-marker table must have to be indexed by every marker in use.
// Marker 0 (untagged interior) always counts.
func (msh *Mesh) NumBoundaryMarkers() (n int) {
	return int(msh.maxBoundaryMarker) + 1
}

func (msh *Mesh) NumVolumeMarkers() (n int) {
	return int(msh.maxVolumeMarker) + 1
}

/*
SplitEdge records a non-conforming refinement of the edge (verts[0],verts[1])
at the midpoint vertex mid. The two half edges are created (if they do not
exist yet) and linked to the parent both ways, so that a neighbor search from
either side of the interface can cross it: the coarse side descends into the
children, the refined side climbs to the parent.
*/
func (msh *Mesh) SplitEdge(verts [2]int, mid int) (err error) {
	var (
		ek     = NewEdgeKey(verts)
		parent *Edge
		ok     bool
	)
	if parent, ok = msh.Edges[ek]; !ok {
		return topologyErrorf("cannot split edge (%d,%d): edge is not part of the mesh",
			verts[0], verts[1])
	}
	if parent.HasChildren {
		return topologyErrorf("edge (%d,%d) is already split", verts[0], verts[1])
	}
	halves := [2][2]int{{verts[0], mid}, {mid, verts[1]}}
	for i, half := range halves {
		child := msh.getOrCreateEdge(half)
		child.Parent = ek
		child.HasParent = true
		child.Marker = parent.Marker
		parent.Children[i] = NewEdgeKey(half)
	}
	parent.HasChildren = true
	return
}

func (msh *Mesh) checkElem(k ElementID) {
	if k < 0 || int(k) >= len(msh.EToV) {
		panic(fmt.Errorf("element %d out of range, mesh has %d elements", k, len(msh.EToV)))
	}
}
