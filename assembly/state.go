package assembly

import (
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/types"
)

/*
TraversalState is one stop of a mesh traversal: an aligned tuple of element
ids, one per space (ElemAbsent where a space's mesh has no element at this
stop), plus the representative element whose markers the form selector reads
and, for surface context, the active local edge. States are produced by the
traversal collaborator and consumed read-only.
*/
type TraversalState struct {
	Elems []mesh.ElementID
	Rep   mesh.ElementID
	Msh   *mesh.Mesh
	ISurf int // active local edge for surface context, -1 for volume states
}

func (st *TraversalState) Present(i int) (present bool) {
	return i < len(st.Elems) && st.Elems[i] != mesh.ElemAbsent
}

func (st *TraversalState) VolumeMarker() (marker types.MarkerTag) {
	if st.Msh == nil || st.Rep == mesh.ElemAbsent {
		return types.MarkerNone
	}
	return st.Msh.VolumeMarker(st.Rep)
}

func (st *TraversalState) EdgeMarker() (marker types.MarkerTag) {
	if st.Msh == nil || st.Rep == mesh.ElemAbsent || st.ISurf < 0 {
		return types.MarkerNone
	}
	return st.Msh.EdgeMarker(st.Rep, st.ISurf)
}

// WithEdge derives the surface-context state for one local edge of the
// representative element.
func (st *TraversalState) WithEdge(ed int) (edgeState TraversalState) {
	edgeState = *st
	edgeState.ISurf = ed
	return
}

/*
Traverse produces the volume traversal states for a set of spaces: one state
per element index, aligned across spaces. Spaces over meshes with fewer
elements contribute ElemAbsent slots, the way traversal over a union mesh
leaves slots empty where a coarser mesh has no element. The representative is
the first present element.
*/
func Traverse(spaces []Space) (states []*TraversalState) {
	var (
		K int
	)
	for _, sp := range spaces {
		if n := sp.Mesh().NumElements(); n > K {
			K = n
		}
	}
	for k := 0; k < K; k++ {
		st := &TraversalState{
			Elems: make([]mesh.ElementID, len(spaces)),
			Rep:   mesh.ElemAbsent,
			ISurf: -1,
		}
		for i, sp := range spaces {
			if k < sp.Mesh().NumElements() {
				st.Elems[i] = mesh.ElementID(k)
				if st.Rep == mesh.ElemAbsent {
					st.Rep = mesh.ElementID(k)
					st.Msh = sp.Mesh()
				}
			} else {
				st.Elems[i] = mesh.ElemAbsent
			}
		}
		states = append(states, st)
	}
	return
}
