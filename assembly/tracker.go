package assembly

import (
	"github.com/bits-and-blooms/bitset"
)

/*
RecalculationTracker is the cache state deciding, across repeated assembly
calls, whether the sparse structure may be reused or must be rebuilt. It
caches the last-seen sequence number per space and sizes per-marker and
per-marker-per-form dirty arrays from the marker counts and form counts.

The coarse structural flags are load-bearing: a fresh flag turns an assembly
call into an O(nonzeros) zeroing pass. The per-form dirty arrays are sized
and reset here but nothing consults them to skip individual form evaluation
yet; fine-grained numeric reuse is an extension point on top of structural
reuse, and a dirty array defaults every entry to "needs recomputation" until
a more granular tracking pass clears it.
*/
type RecalculationTracker struct {
	spSeq []int

	surfaceMarkers, volumeMarkers int

	mfvolForms, vfvolForms   int
	mfsurfForms, vfsurfForms int

	matrixStructureReusable bool
	vectorStructureReusable bool

	matrixSurfaceRecalc *bitset.BitSet
	vectorSurfaceRecalc *bitset.BitSet
	matrixVolumeRecalc  *bitset.BitSet
	vectorVolumeRecalc  *bitset.BitSet

	matrixSurfaceFormsRecalc []*bitset.BitSet // per marker, one bit per surface matrix form
	vectorSurfaceFormsRecalc []*bitset.BitSet
	matrixVolumeFormsRecalc  []*bitset.BitSet
	vectorVolumeFormsRecalc  []*bitset.BitSet
}

func NewRecalculationTracker() (rt *RecalculationTracker) {
	rt = &RecalculationTracker{}
	return
}

func (rt *RecalculationTracker) MatrixStructureReusable() (reusable bool) {
	return rt.matrixStructureReusable
}

func (rt *RecalculationTracker) VectorStructureReusable() (reusable bool) {
	return rt.vectorStructureReusable
}

// MarkMatrixBuilt transitions the matrix flag to fresh; called only after a
// full pattern build completed without a sequence-number change.
func (rt *RecalculationTracker) MarkMatrixBuilt() {
	rt.matrixStructureReusable = true
}

func (rt *RecalculationTracker) MarkVectorBuilt() {
	rt.vectorStructureReusable = true
}

func (rt *RecalculationTracker) Invalidate() {
	rt.matrixStructureReusable = false
	rt.vectorStructureReusable = false
}

/*
ObserveSpaces consumes the spaces' current sequence numbers and marker
counts. A changed sequence number on any tracked space, a changed space
count, or a changed marker count forces both structural flags stale. Marker
count growth re-derives all dirty arrays at the new size with every entry
defaulting to "needs recomputation".
*/
func (rt *RecalculationTracker) ObserveSpaces(spaces []Space) {
	if rt.spSeq == nil || len(rt.spSeq) != len(spaces) {
		if rt.spSeq != nil {
			// Space count changed: this is a new problem setup.
			rt.Invalidate()
		}
		rt.spSeq = make([]int, len(spaces))
		for i, sp := range spaces {
			rt.spSeq[i] = sp.Seq()
		}
	} else {
		for i, sp := range spaces {
			if newSeq := sp.Seq(); newSeq != rt.spSeq[i] {
				rt.Invalidate()
				rt.spSeq[i] = newSeq
			}
		}
	}
	if len(spaces) == 0 {
		return
	}

	msh := spaces[0].Mesh()
	if n := msh.NumBoundaryMarkers(); n != rt.surfaceMarkers {
		rt.surfaceMarkers = n
		rt.Invalidate()
		rt.matrixSurfaceRecalc = allDirty(n)
		rt.vectorSurfaceRecalc = allDirty(n)
		rt.matrixSurfaceFormsRecalc = allDirtyPerMarker(n, rt.mfsurfForms)
		rt.vectorSurfaceFormsRecalc = allDirtyPerMarker(n, rt.vfsurfForms)
	}
	if n := msh.NumVolumeMarkers(); n != rt.volumeMarkers {
		rt.volumeMarkers = n
		rt.Invalidate()
		rt.matrixVolumeRecalc = allDirty(n)
		rt.vectorVolumeRecalc = allDirty(n)
		rt.matrixVolumeFormsRecalc = allDirtyPerMarker(n, rt.mfvolForms)
		rt.vectorVolumeFormsRecalc = allDirtyPerMarker(n, rt.vfvolForms)
	}
}

/*
ObserveWeakForm records the form counts of a newly set weak formulation.
Setting a formulation always forces structural staleness; a changed count of
any form category additionally resizes that category's per-marker dirty
arrays.
*/
func (rt *RecalculationTracker) ObserveWeakForm(wf *WeakForm) {
	rt.Invalidate()

	if len(rt.spSeq) == 0 {
		return
	}
	if n := wf.NumForms(MatrixVol); n != rt.mfvolForms {
		rt.mfvolForms = n
		rt.matrixVolumeFormsRecalc = allDirtyPerMarker(rt.volumeMarkers, n)
	}
	if n := wf.NumForms(VectorVol); n != rt.vfvolForms {
		rt.vfvolForms = n
		rt.vectorVolumeFormsRecalc = allDirtyPerMarker(rt.volumeMarkers, n)
	}
	if n := wf.NumForms(MatrixSurf); n != rt.mfsurfForms {
		rt.mfsurfForms = n
		rt.matrixSurfaceFormsRecalc = allDirtyPerMarker(rt.surfaceMarkers, n)
	}
	if n := wf.NumForms(VectorSurf); n != rt.vfsurfForms {
		rt.vfsurfForms = n
		rt.vectorSurfaceFormsRecalc = allDirtyPerMarker(rt.surfaceMarkers, n)
	}
}

// SurfaceRecalcNeeded reports the per-marker dirty bit for surface
// contributions; matrix selects the matrix-side array, else the vector side.
func (rt *RecalculationTracker) SurfaceRecalcNeeded(marker int, matrix bool) (dirty bool) {
	return dirtyBit(rt.matrixSurfaceRecalc, rt.vectorSurfaceRecalc, marker, matrix)
}

func (rt *RecalculationTracker) VolumeRecalcNeeded(marker int, matrix bool) (dirty bool) {
	return dirtyBit(rt.matrixVolumeRecalc, rt.vectorVolumeRecalc, marker, matrix)
}

// FormRecalcNeeded reports the per-marker, per-form dirty bit for the given
// form category. Only Vol/Surf categories carry dirty arrays.
func (rt *RecalculationTracker) FormRecalcNeeded(kind FormKind, marker, form int) (dirty bool) {
	var (
		perMarker []*bitset.BitSet
	)
	switch kind {
	case MatrixVol:
		perMarker = rt.matrixVolumeFormsRecalc
	case VectorVol:
		perMarker = rt.vectorVolumeFormsRecalc
	case MatrixSurf:
		perMarker = rt.matrixSurfaceFormsRecalc
	case VectorSurf:
		perMarker = rt.vectorSurfaceFormsRecalc
	default:
		return false
	}
	if marker < 0 || marker >= len(perMarker) || perMarker[marker] == nil {
		return false
	}
	return perMarker[marker].Test(uint(form))
}

func dirtyBit(matrixBits, vectorBits *bitset.BitSet, marker int, matrix bool) (dirty bool) {
	bits := vectorBits
	if matrix {
		bits = matrixBits
	}
	if bits == nil || marker < 0 || uint(marker) >= bits.Len() {
		return false
	}
	return bits.Test(uint(marker))
}

func allDirty(n int) (b *bitset.BitSet) {
	b = bitset.New(uint(n))
	b.SetAll()
	return
}

func allDirtyPerMarker(markers, forms int) (bs []*bitset.BitSet) {
	bs = make([]*bitset.BitSet, markers)
	for i := range bs {
		bs[i] = allDirty(forms)
	}
	return
}
