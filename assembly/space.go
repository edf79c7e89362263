package assembly

import (
	"sort"

	"github.com/notargets/gofea/mesh"
)

// DofInactive marks a constrained or eliminated degree of freedom in an
// AssemblyList. An inactive dof never generates a matrix entry.
const DofInactive = -1

// AssemblyList maps, for one element and one space, local shape-function
// slots to global dof indices. It is produced per element per assembly pass
// and discarded after pattern registration.
type AssemblyList struct {
	Dofs []int
}

func (al AssemblyList) Cnt() (n int) {
	return len(al.Dofs)
}

/*
Space is one field's basis-function assignment over a mesh. The assembler
never owns a Space; it keeps an external reference and a cached copy of the
last-seen sequence number, which must increase whenever the dof numbering
changes (refinement, re-enumeration, constraint changes). Change detection is
by value comparison of sequence numbers, never by identity.
*/
type Space interface {
	Seq() int
	NumDofs() int
	Mesh() *mesh.Mesh
	ElementAssemblyList(k mesh.ElementID) AssemblyList
}

// TotalDofs is the dimension of the global system over a set of spaces.
func TotalDofs(spaces []Space) (ndof int) {
	for _, sp := range spaces {
		ndof += sp.NumDofs()
	}
	return
}

// SpaceOffsets stacks the spaces' dof ranges into one global numbering:
// space i occupies [offsets[i], offsets[i]+spaces[i].NumDofs()).
func SpaceOffsets(spaces []Space) (offsets []int) {
	offsets = make([]int, len(spaces))
	var sum int
	for i, sp := range spaces {
		offsets[i] = sum
		sum += sp.NumDofs()
	}
	return
}

/*
LinearSpace assigns one dof per mesh vertex (linear Lagrange elements). It is
the concrete Space used by the drivers and tests; higher-order spaces plug in
through the Space interface the same way.
*/
type LinearSpace struct {
	msh  *mesh.Mesh
	seq  int
	dofs map[int]int // vertex -> dof index within this space, DofInactive if constrained
	ndof int
}

func NewLinearSpace(msh *mesh.Mesh) (sp *LinearSpace) {
	sp = &LinearSpace{
		msh: msh,
	}
	sp.enumerate()
	return
}

// enumerate assigns dofs to all unconstrained vertices in ascending vertex
// order and bumps the sequence number.
func (sp *LinearSpace) enumerate() {
	var (
		verts       []int
		constrained = make(map[int]bool)
	)
	for v, dof := range sp.dofs {
		if dof == DofInactive {
			constrained[v] = true
		}
	}
	seen := make(map[int]bool)
	for k := 0; k < sp.msh.NumElements(); k++ {
		for _, v := range sp.msh.ElementVerts(mesh.ElementID(k)) {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	sort.Ints(verts)
	sp.dofs = make(map[int]int, len(verts))
	sp.ndof = 0
	for _, v := range verts {
		if constrained[v] {
			sp.dofs[v] = DofInactive
			continue
		}
		sp.dofs[v] = sp.ndof
		sp.ndof++
	}
	sp.seq++
}

func (sp *LinearSpace) Seq() (seq int) {
	return sp.seq
}

func (sp *LinearSpace) NumDofs() (ndof int) {
	return sp.ndof
}

func (sp *LinearSpace) Mesh() (msh *mesh.Mesh) {
	return sp.msh
}

func (sp *LinearSpace) ElementAssemblyList(k mesh.ElementID) (al AssemblyList) {
	var (
		verts = sp.msh.ElementVerts(k)
	)
	al.Dofs = make([]int, len(verts))
	for i, v := range verts {
		dof, ok := sp.dofs[v]
		if !ok {
			dof = DofInactive
		}
		al.Dofs[i] = dof
	}
	return
}

// ConstrainVertex eliminates the vertex's dof (e.g. an essential boundary
// condition applied outside this core) and renumbers the remaining dofs.
func (sp *LinearSpace) ConstrainVertex(v int) {
	if _, ok := sp.dofs[v]; !ok {
		return
	}
	sp.dofs[v] = DofInactive
	sp.enumerate()
}

// Renumber forces a re-enumeration, standing in for the refinement and
// re-ordering operations a full space implementation would perform.
func (sp *LinearSpace) Renumber() {
	sp.enumerate()
}

/*
DGLinearSpace assigns dofs per element corner without sharing across element
boundaries, the discontinuous counterpart of LinearSpace. Coupling between
elements then exists only through DG forms, which is what makes the neighbor
expansion of the pattern observable: without it, two adjacent elements have
fully disjoint dof sets.
*/
type DGLinearSpace struct {
	msh *mesh.Mesh
	seq int
}

func NewDGLinearSpace(msh *mesh.Mesh) (sp *DGLinearSpace) {
	sp = &DGLinearSpace{
		msh: msh,
		seq: 1,
	}
	return
}

func (sp *DGLinearSpace) Seq() (seq int) {
	return sp.seq
}

func (sp *DGLinearSpace) NumDofs() (ndof int) {
	return 3 * sp.msh.NumElements()
}

func (sp *DGLinearSpace) Mesh() (msh *mesh.Mesh) {
	return sp.msh
}

func (sp *DGLinearSpace) ElementAssemblyList(k mesh.ElementID) (al AssemblyList) {
	base := 3 * int(k)
	al.Dofs = []int{base, base + 1, base + 2}
	return
}

// Renumber stands in for refinement-driven re-enumeration.
func (sp *DGLinearSpace) Renumber() {
	sp.seq++
}
