package assembly

import (
	"sync"

	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/types"
	"github.com/notargets/gofea/utils"
)

/*
buildStructure runs the full pattern pass: the traversal-state loop is
sharded over workers, each accumulating a private coordinate set, and the
partial sets are merged into the matrix storage before final allocation.
Elements are independent once markers and dof lists are read-only for the
pass, so the only serialization point is the merge.
*/
func (sa *SelectiveAssembler) buildStructure(mat *utils.SparseSystem, spaces []Space,
	states []*TraversalState, offsets []int, ndof int) (err error) {
	blocks, err := sa.wf.Blocks(sa.forceDiagonalBlocks)
	if err != nil {
		return wrapStructural("block-enable map underivable", err)
	}

	mat.Free()
	mat.Prealloc(ndof)

	var (
		pm        = utils.NewPartitionMap(sa.parallelDegree, len(states))
		degree    = pm.ParallelDegree
		coordSets = make([]map[types.CoordKey]struct{}, degree)
		errs      = make([]error, degree)
		wg        sync.WaitGroup
	)
	for n := 0; n < degree; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var (
				set        = make(map[types.CoordKey]struct{})
				kMin, kMax = pm.GetBucketRange(n)
			)
			coordSets[n] = set
			for k := kMin; k < kMax; k++ {
				if e := sa.registerState(states[k], spaces, offsets, blocks, set); e != nil {
					errs[n] = e
					return
				}
			}
		}(n)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}

	for _, set := range coordSets {
		for ck := range set {
			mat.PreAddKey(ck)
		}
	}
	mat.Alloc()
	return
}

// registerState emits every (row, col) coordinate the state can contribute:
// DG neighbor coupling first when the formulation has DG forms, then the
// ordinary per-element block sweep.
func (sa *SelectiveAssembler) registerState(st *TraversalState, spaces []Space,
	offsets []int, blocks [][]bool, set map[types.CoordKey]struct{}) (err error) {
	if len(st.Elems) != len(spaces) {
		return structuralErrorf("traversal state has %d element slots for %d spaces",
			len(st.Elems), len(spaces))
	}

	als := make([]AssemblyList, len(spaces))
	for i := range spaces {
		if st.Present(i) {
			als[i] = globalAssemblyList(spaces[i], offsets[i], st.Elems[i])
		}
	}

	if sa.wf.IsDG() {
		if err = sa.registerDGCoupling(st, spaces, offsets, blocks, als, set); err != nil {
			return
		}
	}

	// Ordinary (non-DG) coupling over all enabled equation-block pairs,
	// including the diagonal case m == n. Every enabled block with both
	// elements present is registered, with no per-state marker filtering:
	// the pattern must hold every coordinate a form could write under any
	// marker assignment that survives the reuse check, and a retag changes
	// neither sequence numbers nor marker counts.
	for m := range spaces {
		if !st.Present(m) {
			continue
		}
		for n := range spaces {
			if !blocks[m][n] || !st.Present(n) {
				continue
			}
			registerCrossProduct(als[m], als[n], set)
		}
	}
	return
}

/*
registerDGCoupling expands the pattern with cross-element coupling: for every
space and every local edge the neighbors on the opposite side are discovered,
and for every enabled (m, el) block pair the dofs of m's own element couple
with the neighbor's dofs in both enabled directions. The adjacency list is a
flat per-state scratch keyed by (space, edge) and released at state boundary.
*/
func (sa *SelectiveAssembler) registerDGCoupling(st *TraversalState, spaces []Space,
	offsets []int, blocks [][]bool, als []AssemblyList, set map[types.CoordKey]struct{}) (err error) {
	var (
		nEdges = st.Msh.NumEdges(st.Rep)
		adj    = make([][]mesh.ElementID, len(spaces)*nEdges)
	)
	for el := range spaces {
		if !st.Present(el) {
			continue
		}
		ns := mesh.NewNeighborSearch(st.Elems[el], spaces[el].Mesh())
		// Boundary edges are visited like any other during a structure pass;
		// they simply contribute no neighbors.
		ns.SetIgnoreErrors(true)
		for ed := 0; ed < nEdges; ed++ {
			if e := ns.SetActiveEdge(ed); e != nil {
				return wrapStructural("neighbor discovery failed", e)
			}
			if n := ns.NumNeighbors(); n > 0 {
				neighbors := make([]mesh.ElementID, n)
				copy(neighbors, ns.GetNeighbors())
				adj[el*nEdges+ed] = neighbors
			}
		}
	}

	for m := range spaces {
		if !st.Present(m) {
			continue
		}
		for el := range spaces {
			if !blocks[m][el] && !blocks[el][m] {
				continue
			}
			for ed := 0; ed < nEdges; ed++ {
				for _, neigh := range adj[el*nEdges+ed] {
					an := globalAssemblyList(spaces[el], offsets[el], neigh)
					for _, dofI := range als[m].Dofs {
						if dofI < 0 {
							continue
						}
						for _, dofJ := range an.Dofs {
							if dofJ < 0 {
								continue
							}
							if blocks[m][el] {
								set[types.NewCoordKey(dofI, dofJ)] = struct{}{}
							}
							if blocks[el][m] {
								set[types.NewCoordKey(dofJ, dofI)] = struct{}{}
							}
						}
					}
				}
			}
		}
	}
	return
}

func registerCrossProduct(am, an AssemblyList, set map[types.CoordKey]struct{}) {
	for _, dofI := range am.Dofs {
		if dofI < 0 {
			continue
		}
		for _, dofJ := range an.Dofs {
			if dofJ < 0 {
				continue
			}
			set[types.NewCoordKey(dofI, dofJ)] = struct{}{}
		}
	}
}

// globalAssemblyList shifts a space-local assembly list into the stacked
// global numbering, preserving inactive sentinels.
func globalAssemblyList(sp Space, offset int, k mesh.ElementID) (al AssemblyList) {
	local := sp.ElementAssemblyList(k)
	al.Dofs = make([]int, len(local.Dofs))
	for i, dof := range local.Dofs {
		if dof >= 0 {
			dof += offset
		}
		al.Dofs[i] = dof
	}
	return
}
