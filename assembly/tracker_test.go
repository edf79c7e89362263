package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gofea/mesh"
)

func TestTrackerSequenceInvalidation(t *testing.T) {
	var (
		msh    = mesh.NewUnitSquare(1)
		sp     = NewLinearSpace(msh)
		spaces = []Space{sp}
		rt     = NewRecalculationTracker()
	)
	// Initial state is stale for both flags
	assert.False(t, rt.MatrixStructureReusable())
	assert.False(t, rt.VectorStructureReusable())

	// First observation records the sequence numbers
	rt.ObserveSpaces(spaces)
	rt.MarkMatrixBuilt()
	rt.MarkVectorBuilt()
	assert.True(t, rt.MatrixStructureReusable())
	assert.True(t, rt.VectorStructureReusable())

	// Unchanged sequence numbers keep the structure fresh
	rt.ObserveSpaces(spaces)
	assert.True(t, rt.MatrixStructureReusable())

	// A renumbering bumps the sequence and forces both flags stale
	sp.Renumber()
	rt.ObserveSpaces(spaces)
	assert.False(t, rt.MatrixStructureReusable())
	assert.False(t, rt.VectorStructureReusable())

	// A changed space count is a new problem setup
	rt.MarkMatrixBuilt()
	rt.ObserveSpaces([]Space{sp, NewLinearSpace(msh)})
	assert.False(t, rt.MatrixStructureReusable())
}

func TestTrackerMarkerInvalidation(t *testing.T) {
	var (
		msh    = mesh.NewUnitSquare(1)
		spaces = []Space{NewLinearSpace(msh)}
		rt     = NewRecalculationTracker()
	)
	rt.ObserveSpaces(spaces)
	rt.MarkMatrixBuilt()
	rt.MarkVectorBuilt()

	// Growing the boundary-marker count forces a full rebuild
	assert.NoError(t, msh.SetBoundaryMarker([2]int{0, 1}, 9))
	rt.ObserveSpaces(spaces)
	assert.False(t, rt.MatrixStructureReusable())
	assert.False(t, rt.VectorStructureReusable())

	// All per-marker dirty bits default to "needs recomputation"
	for marker := 0; marker < msh.NumBoundaryMarkers(); marker++ {
		assert.True(t, rt.SurfaceRecalcNeeded(marker, true))
		assert.True(t, rt.SurfaceRecalcNeeded(marker, false))
	}

	rt.MarkMatrixBuilt()
	msh.SetVolumeMarker(0, 3)
	rt.ObserveSpaces(spaces)
	assert.False(t, rt.MatrixStructureReusable())
	for marker := 0; marker < msh.NumVolumeMarkers(); marker++ {
		assert.True(t, rt.VolumeRecalcNeeded(marker, true))
	}
}

func TestTrackerFormCountInvalidation(t *testing.T) {
	var (
		msh    = mesh.NewUnitSquare(1)
		spaces = []Space{NewLinearSpace(msh)}
		rt     = NewRecalculationTracker()
	)
	rt.ObserveSpaces(spaces)

	wf := NewWeakForm(1)
	assert.NoError(t, wf.AddForm(FormDescriptor{Kind: MatrixVol, I: 0, J: 0, Scale: 1, Everywhere: true}))
	assert.NoError(t, wf.AddForm(FormDescriptor{Kind: VectorSurf, I: 0, Scale: 1, Everywhere: true}))
	rt.ObserveWeakForm(wf)

	// Per-marker, per-form dirty arrays exist at the observed sizes and
	// default dirty; nothing clears them yet (structural reuse is the only
	// consumer of tracker state so far)
	assert.True(t, rt.FormRecalcNeeded(MatrixVol, 0, 0))
	assert.True(t, rt.FormRecalcNeeded(VectorSurf, int(mesh.MarkerTop), 0))
	assert.False(t, rt.FormRecalcNeeded(MatrixVol, 0, 1)) // no second form

	// Setting a formulation always forces staleness, changed counts or not
	rt.MarkMatrixBuilt()
	rt.MarkVectorBuilt()
	rt.ObserveWeakForm(wf)
	assert.False(t, rt.MatrixStructureReusable())
	assert.False(t, rt.VectorStructureReusable())
}
