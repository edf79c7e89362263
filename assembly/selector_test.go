package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/types"
)

func twoTriangleMesh(t *testing.T) (msh *mesh.Mesh) {
	msh = mesh.NewMesh()
	msh.AddElement([3]int{0, 1, 2})
	msh.AddElement([3]int{1, 3, 2})
	// Outer edges carry markers; the shared edge (1,2) stays interior
	assert.NoError(t, msh.SetBoundaryMarker([2]int{0, 1}, 1))
	assert.NoError(t, msh.SetBoundaryMarker([2]int{2, 0}, 2))
	assert.NoError(t, msh.SetBoundaryMarker([2]int{1, 3}, 1))
	assert.NoError(t, msh.SetBoundaryMarker([2]int{3, 2}, 2))
	return
}

func TestFormSelectorVolume(t *testing.T) {
	var (
		msh    = twoTriangleMesh(t)
		spaces = []Space{NewLinearSpace(msh), NewLinearSpace(msh)}
		states = Traverse(spaces)
		wf     = NewWeakForm(2)
		fs     = NewFormSelector(wf)
	)
	st := states[0]

	{ // Presence of both elements and a non-negligible scale
		fd := &FormDescriptor{Kind: MatrixVol, I: 0, J: 1, Scale: 1, Everywhere: true}
		assert.True(t, fs.FormActive(fd, st))

		fd.Scale = 1e-13 // provably zero
		assert.False(t, fs.FormActive(fd, st))
		fd.Scale = -1e-11 // sign does not matter, magnitude does
		assert.True(t, fs.FormActive(fd, st))
	}
	{ // A missing element deactivates any form over its block
		partial := &TraversalState{
			Elems: []mesh.ElementID{0, mesh.ElemAbsent},
			Rep:   0, Msh: msh, ISurf: -1,
		}
		on00 := &FormDescriptor{Kind: MatrixVol, I: 0, J: 0, Scale: 1, Everywhere: true}
		on01 := &FormDescriptor{Kind: MatrixVol, I: 0, J: 1, Scale: 1, Everywhere: true}
		von1 := &FormDescriptor{Kind: VectorVol, I: 1, Scale: 1, Everywhere: true}
		assert.True(t, fs.FormActive(on00, partial))
		assert.False(t, fs.FormActive(on01, partial))
		assert.False(t, fs.FormActive(von1, partial))
	}
	{ // Zero block weight deactivates matrix forms but not vector forms
		assert.NoError(t, wf.SetBlockWeights([][]float64{{0, 1}, {1, 1}}))
		mfd := &FormDescriptor{Kind: MatrixVol, I: 0, J: 0, Scale: 1, Everywhere: true}
		vfd := &FormDescriptor{Kind: VectorVol, I: 0, Scale: 1, Everywhere: true}
		assert.False(t, fs.FormActive(mfd, st))
		assert.True(t, fs.FormActive(vfd, st))
		assert.NoError(t, wf.SetBlockWeights(nil))
	}
	{ // Volume marker restriction
		msh.SetVolumeMarker(0, 7)
		fd := &FormDescriptor{Kind: MatrixVol, I: 0, J: 0, Scale: 1,
			Markers: []types.MarkerTag{7}}
		assert.True(t, fs.FormActive(fd, states[0]))
		assert.False(t, fs.FormActive(fd, states[1])) // element 1 untagged
	}
}

func TestFormSelectorSurface(t *testing.T) {
	var (
		msh    = twoTriangleMesh(t)
		spaces = []Space{NewLinearSpace(msh), NewLinearSpace(msh)}
		states = Traverse(spaces)
		wf     = NewWeakForm(2)
		fs     = NewFormSelector(wf)
	)
	// Element 0 edges: (0,1) marker 1, (1,2) interior, (2,0) marker 2
	st := states[0]

	fd := &FormDescriptor{Kind: MatrixSurf, I: 0, J: 1, Scale: 1, Everywhere: true}
	{ // No edge context at all: inactive
		assert.False(t, fs.FormActive(fd, st))
	}
	{ // Interior edge (marker 0): inactive even for "everywhere" forms
		edgeState := st.WithEdge(1)
		assert.False(t, fs.FormActive(fd, &edgeState))
	}
	{ // Tagged edge: everywhere form is active
		edgeState := st.WithEdge(0)
		assert.True(t, fs.FormActive(fd, &edgeState))
	}
	{ // Marker-restricted form follows its marker set
		restricted := &FormDescriptor{Kind: MatrixSurf, I: 0, J: 1, Scale: 1,
			Markers: []types.MarkerTag{2}}
		edge0 := st.WithEdge(0) // marker 1
		edge2 := st.WithEdge(2) // marker 2
		assert.False(t, fs.FormActive(restricted, &edge0))
		assert.True(t, fs.FormActive(restricted, &edge2))
	}
	{ // Vector surface forms apply the same marker tests
		vfd := &FormDescriptor{Kind: VectorSurf, I: 0, Scale: 1,
			Markers: []types.MarkerTag{1}}
		edge0 := st.WithEdge(0)
		edge1 := st.WithEdge(1)
		assert.True(t, fs.FormActive(vfd, &edge0))
		assert.False(t, fs.FormActive(vfd, &edge1))
	}
}

// blockHasActiveMatrixForm is the per-block probe a numeric assembly pass
// uses; surface forms are checked over every local edge of the rep element.
func TestBlockHasActiveMatrixForm(t *testing.T) {
	var (
		msh = mesh.NewMesh()
		wf  = NewWeakForm(2)
		fs  = NewFormSelector(wf)
	)
	msh.AddElement([3]int{0, 1, 2})
	msh.AddElement([3]int{1, 3, 2})
	// Only element 0 carries the tagged edge
	assert.NoError(t, msh.SetBoundaryMarker([2]int{0, 1}, 1))

	spaces := []Space{NewLinearSpace(msh), NewLinearSpace(msh)}
	states := Traverse(spaces)
	assert.NoError(t, wf.AddForm(FormDescriptor{Kind: MatrixSurf, I: 0, J: 0, Scale: 1,
		Markers: []types.MarkerTag{1}}))
	assert.NoError(t, wf.AddForm(FormDescriptor{Kind: MatrixVol, I: 1, J: 1, Scale: 1, Everywhere: true}))

	assert.True(t, fs.blockHasActiveMatrixForm(0, 0, states[0]))
	assert.False(t, fs.blockHasActiveMatrixForm(0, 0, states[1])) // no marker-1 edge
	assert.True(t, fs.blockHasActiveMatrixForm(1, 1, states[1]))
	assert.False(t, fs.blockHasActiveMatrixForm(0, 1, states[0])) // no form on the block
}

func TestFormSelectorDG(t *testing.T) {
	var (
		msh    = twoTriangleMesh(t)
		spaces = []Space{NewDGLinearSpace(msh), NewDGLinearSpace(msh)}
		states = Traverse(spaces)
		wf     = NewWeakForm(2)
		fs     = NewFormSelector(wf)
	)
	st := states[0]

	// DG forms carry no marker filtering of their own: they reduce to the
	// base presence/scale test, restriction happens in neighbor expansion
	mfd := &FormDescriptor{Kind: MatrixDG, I: 0, J: 1, Scale: 1}
	vfd := &FormDescriptor{Kind: VectorDG, I: 0, Scale: 1}
	assert.True(t, fs.FormActive(mfd, st))
	assert.True(t, fs.FormActive(vfd, st))

	mfd.Scale = 0
	assert.False(t, fs.FormActive(mfd, st))

	partial := &TraversalState{
		Elems: []mesh.ElementID{0, mesh.ElemAbsent},
		Rep:   0, Msh: msh, ISurf: -1,
	}
	mfd.Scale = 1
	assert.False(t, fs.FormActive(mfd, partial))
	assert.True(t, fs.FormActive(vfd, partial))
}
