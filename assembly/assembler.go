package assembly

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/notargets/gofea/logger"
	"github.com/notargets/gofea/utils"
)

/*
SelectiveAssembler prepares the sparse structure of the global Jacobian and
residual for a Newton iteration. Across repeated calls it reuses the built
structure whenever the recalculation tracker proves nothing that feeds the
pattern has changed, in which case a call degenerates to zeroing the
existing storage.

The assembler is driven from a single control thread; a structure build
parallelizes the traversal-state loop internally, but the tracker state is
only ever mutated between passes.
*/
type SelectiveAssembler struct {
	wf       *WeakForm
	selector *FormSelector
	tracker  *RecalculationTracker
	spaces   []Space

	forceDiagonalBlocks bool
	parallelDegree      int
	log                 zerolog.Logger
}

func NewSelectiveAssembler() (sa *SelectiveAssembler) {
	sa = &SelectiveAssembler{
		tracker:        NewRecalculationTracker(),
		parallelDegree: runtime.NumCPU(),
		log:            logger.Logger().With().Str("component", "assembler").Logger(),
	}
	return
}

// SetParallelDegree overrides the worker count for structure builds.
func (sa *SelectiveAssembler) SetParallelDegree(np int) {
	if np < 1 {
		np = 1
	}
	sa.parallelDegree = np
}

// SetForceDiagonalBlocks keeps every diagonal equation block enabled even if
// no form contributes to it; solvers that require a structurally nonempty
// diagonal ask for this.
func (sa *SelectiveAssembler) SetForceDiagonalBlocks(force bool) {
	sa.forceDiagonalBlocks = force
}

// Tracker exposes the recalculation state for inspection; treat it as
// read-only between assembly passes.
func (sa *SelectiveAssembler) Tracker() (rt *RecalculationTracker) {
	return sa.tracker
}

// SetSpaces records the spaces' current sequence numbers and marker counts
// for change detection. It is also run as part of each assembly pass setup.
func (sa *SelectiveAssembler) SetSpaces(spaces []Space) {
	sa.spaces = spaces
	sa.tracker.ObserveSpaces(spaces)
}

func (sa *SelectiveAssembler) SetWeakFormulation(wf *WeakForm) (err error) {
	if wf == nil {
		return configurationErrorf("nil weak formulation")
	}
	sa.wf = wf
	sa.selector = NewFormSelector(wf)
	sa.tracker.ObserveWeakForm(wf)
	return
}

/*
PrepareSparseStructure makes mat and rhs ready for numeric assembly: on a
cache hit only the existing storage is zeroed; on a miss the full nonzero
pattern is rebuilt from the traversal states, the block-enable map and the
per-space assembly lists, and the storage reallocated. mat or rhs may be nil
when only one side is assembled.
*/
func (sa *SelectiveAssembler) PrepareSparseStructure(mat *utils.SparseSystem, rhs *utils.Vector,
	spaces []Space, states []*TraversalState) (err error) {
	if sa.wf == nil {
		return structuralErrorf("no weak formulation set")
	}
	if len(spaces) == 0 {
		return structuralErrorf("no spaces set")
	}
	if sa.wf.NumEquations() != len(spaces) {
		return structuralErrorf("weak formulation declares %d equations but %d spaces are set",
			sa.wf.NumEquations(), len(spaces))
	}
	sa.SetSpaces(spaces)

	var (
		ndof    = TotalDofs(spaces)
		offsets = SpaceOffsets(spaces)
	)

	if sa.tracker.MatrixStructureReusable() && mat != nil {
		sa.log.Debug().Int("nnz", mat.Nonzeros()).Msg("reusing matrix structure, zeroing values")
		mat.Zero()
	}
	if sa.tracker.VectorStructureReusable() && rhs != nil {
		if rhs.Len() == 0 {
			rhs.Alloc(ndof)
		} else {
			rhs.Zero()
		}
	}

	if !sa.tracker.MatrixStructureReusable() && mat != nil {
		if err = sa.buildStructure(mat, spaces, states, offsets, ndof); err != nil {
			return
		}
		sa.tracker.MarkMatrixBuilt()
		sa.log.Debug().Int("ndof", ndof).Int("nnz", mat.Nonzeros()).
			Int("states", len(states)).Msg("rebuilt matrix structure")
	}

	if !sa.tracker.VectorStructureReusable() && rhs != nil {
		rhs.Alloc(ndof)
		sa.tracker.MarkVectorBuilt()
	}
	return
}
