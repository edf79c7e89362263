package mesh

/*
NeighborSearch discovers, for one element and one of its local edges, every
element whose boundary touches the opposite side of that edge. On a
conforming interface this is a single element; across a non-conforming
interface (one side refined, the other not) the search descends the edge's
refinement children and can return several neighbors. The search carries no
numerical information, only connectivity.
*/
type NeighborSearch struct {
	msh          *Mesh
	elem         ElementID
	ignoreErrors bool
	neighbors    []ElementID
}

func NewNeighborSearch(elem ElementID, msh *Mesh) (ns *NeighborSearch) {
	msh.checkElem(elem)
	ns = &NeighborSearch{
		msh:  msh,
		elem: elem,
	}
	return
}

// SetIgnoreErrors makes an untagged edge with no opposite side behave as an
// outer boundary (empty neighbor set) instead of failing the search. The
// assembler runs with this enabled because a structure pass visits every
// edge, boundary ones included.
func (ns *NeighborSearch) SetIgnoreErrors(flag bool) {
	ns.ignoreErrors = flag
}

// SetActiveEdge runs the search for local edge ed. The result is retrieved
// with GetNeighbors / NumNeighbors and is overwritten by the next call.
func (ns *NeighborSearch) SetActiveEdge(ed int) (err error) {
	var (
		verts = ns.msh.LocalEdgeVerts(ns.elem, ed)
		ek    = NewEdgeKey(verts)
	)
	ns.neighbors = ns.neighbors[:0]

	e, ok := ns.msh.Edges[ek]
	if !ok || e.NumConnectedElems == 0 {
		// Every edge of a registered element is entered into the edge map when
		// the element is added, so a miss here means the mesh was corrupted.
		return topologyErrorf("element %d edge %d has no owning element", ns.elem, ed)
	}

	// Conforming case: the edge itself knows the opposite element.
	if direct := e.connections(ns.elem); len(direct) > 0 {
		ns.neighbors = append(ns.neighbors, direct...)
		return
	}

	// Non-conforming, coarse side: descend into the refinement children.
	if e.HasChildren {
		ns.collectLeaves(e, &ns.neighbors)
		if len(ns.neighbors) > 0 {
			return
		}
	}

	// Non-conforming, refined side: the opposite element owns our parent edge.
	if e.HasParent {
		if parent, ok := ns.msh.Edges[e.Parent]; ok {
			if opposite := parent.connections(ns.elem); len(opposite) > 0 {
				ns.neighbors = append(ns.neighbors, opposite...)
				return
			}
		}
	}

	if e.Marker.IsTagged() || ns.ignoreErrors {
		// True domain boundary: no neighbor, not an error.
		return
	}
	return topologyErrorf("element %d edge %d (%d,%d) is interior but has no neighbor and no boundary marker",
		ns.elem, ed, verts[0], verts[1])
}

// collectLeaves gathers elements connected to the leaf edges below e,
// recursing through further refinement levels.
func (ns *NeighborSearch) collectLeaves(e *Edge, out *[]ElementID) {
	for _, ck := range e.Children {
		child, ok := ns.msh.Edges[ck]
		if !ok {
			continue
		}
		if child.HasChildren {
			ns.collectLeaves(child, out)
			continue
		}
		*out = append(*out, child.connections(ns.elem)...)
	}
}

func (ns *NeighborSearch) GetNeighbors() (elems []ElementID) {
	return ns.neighbors
}

func (ns *NeighborSearch) NumNeighbors() (n int) {
	return len(ns.neighbors)
}
