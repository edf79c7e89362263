package assembly

import "math"

/*
FormSelector is the pure predicate layer deciding whether one weak-form
contribution is active for a traversal state. It has no side effects and no
state of its own beyond the weak formulation it reads (scaling factors,
marker sets, the optional block-weight table).
*/
type FormSelector struct {
	wf *WeakForm
}

func NewFormSelector(wf *WeakForm) (fs *FormSelector) {
	fs = &FormSelector{wf: wf}
	return
}

func (fs *FormSelector) FormActive(fd *FormDescriptor, st *TraversalState) (active bool) {
	switch fd.Kind {
	case MatrixVol:
		return fs.matrixFormActive(fd, st) && fd.MatchesMarker(st.VolumeMarker())
	case MatrixSurf:
		if !fs.matrixFormActive(fd, st) {
			return false
		}
		marker := st.EdgeMarker()
		// Marker 0 means interior with no boundary tag: surface forms never
		// assemble there, not even "everywhere" ones.
		if !marker.IsTagged() {
			return false
		}
		return fd.MatchesMarker(marker)
	case MatrixDG:
		// DG filtering happens during neighbor expansion, so the form reduces
		// to its base matrix test here.
		return fs.matrixFormActive(fd, st)
	case VectorVol:
		return fs.vectorFormActive(fd, st) && fd.MatchesMarker(st.VolumeMarker())
	case VectorSurf:
		if !fs.vectorFormActive(fd, st) {
			return false
		}
		marker := st.EdgeMarker()
		if !marker.IsTagged() {
			return false
		}
		return fd.MatchesMarker(marker)
	case VectorDG:
		return fs.vectorFormActive(fd, st)
	default:
		panic("unknown option")
	}
}

// matrixFormActive is the base test shared by all matrix kinds: both coupled
// elements present, and neither the scaling factor nor the block weight
// provably zero.
func (fs *FormSelector) matrixFormActive(fd *FormDescriptor, st *TraversalState) (active bool) {
	if !st.Present(fd.I) || !st.Present(fd.J) {
		return false
	}
	if math.Abs(fd.Scale) < ScalingTolerance {
		return false
	}
	return fs.wf.blockWeightOK(fd.I, fd.J)
}

func (fs *FormSelector) vectorFormActive(fd *FormDescriptor, st *TraversalState) (active bool) {
	if !st.Present(fd.I) {
		return false
	}
	return math.Abs(fd.Scale) >= ScalingTolerance
}

/*
blockHasActiveMatrixForm reports whether any matrix form on block (m,n) is
active for the state — for surface forms, on any local edge of the
representative element. A numeric assembly pass uses this to skip equation
blocks no form writes to in the current state; the structure pass does not,
since the pattern must cover every marker assignment the reuse check admits.
*/
func (fs *FormSelector) blockHasActiveMatrixForm(m, n int, st *TraversalState) (active bool) {
	var (
		nEdges int
	)
	if st.Msh != nil && st.Rep >= 0 {
		nEdges = st.Msh.NumEdges(st.Rep)
	}
	fs.wf.EachForm(func(fd *FormDescriptor) {
		if active || !fd.Kind.IsMatrix() || fd.I != m || fd.J != n {
			return
		}
		if fd.Kind.IsSurf() {
			for ed := 0; ed < nEdges; ed++ {
				edgeState := st.WithEdge(ed)
				if fs.FormActive(fd, &edgeState) {
					active = true
					return
				}
			}
			return
		}
		if fs.FormActive(fd, st) {
			active = true
		}
	})
	return
}
