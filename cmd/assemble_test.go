package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/notargets/gofea/InputParameters"
	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/mesh"
)

func TestRunAssembly(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Case
MeshSize: 2
Equations: 2
SpaceTypes: [continuous, dg]
Iterations: 2
Forms:
  - Kind: matrix_vol
    I: 0
    J: 0
    Scale: 1.
    Everywhere: true
  - Kind: matrix_dg
    I: 1
    J: 1
    Scale: 0.5
    Everywhere: true
  - Kind: matrix_surf
    I: 0
    J: 1
    Scale: 1.
    Markers: [1, 3]
`)
	var input InputParameters.AssemblyParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, input.MeshSize, 2)
	assert.Equal(t, input.Equations, 2)
	assert.Equal(t, len(input.Forms), 3)
	// Check the surface form marker restriction round-trips
	assert.Equal(t, input.Forms[2].Markers, []int{1, 3})
	input.Print()

	wf := buildWeakForm(&input)
	assert.Equal(t, wf.NumEquations(), 2)
	assert.Equal(t, wf.IsDG(), true)

	msh := mesh.NewUnitSquare(input.MeshSize)
	spaces := buildSpaces(&input, msh)
	assert.Equal(t, len(spaces), 2)
	_, isDG := spaces[1].(*assembly.DGLinearSpace)
	assert.Equal(t, isDG, true)
}
