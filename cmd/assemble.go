/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/notargets/gofea/InputParameters"
	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/logger"
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/types"
	"github.com/notargets/gofea/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type ModelAssembly struct {
	ParamsFile string
	Profile    bool
	Verbose    bool
}

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build the sparse matrix structure for a model problem",
	Long: `
Constructs the global sparse matrix nonzero structure for a finite element
problem on a generated unit square mesh, then repeats the preparation to
exercise structural reuse across solver iterations`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("assemble called")
		ma := &ModelAssembly{}
		if ma.ParamsFile, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
			panic(err)
		}
		ma.Profile, _ = cmd.Flags().GetBool("cpuprofile")
		ma.Verbose, _ = cmd.Flags().GetBool("verbose")
		ap := processAssemblyInput(ma)
		RunAssembly(ma, ap)
	},
}

func processAssemblyInput(ma *ModelAssembly) (ap *InputParameters.AssemblyParameters) {
	var (
		err error
	)
	if len(ma.ParamsFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputParametersFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Poisson Test Case"
MeshSize: 8
Equations: 1
SpaceTypes: [continuous]
Iterations: 3
Forms:
  - Kind: matrix_vol
    I: 0
    J: 0
    Scale: 1.
    Everywhere: true
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(ma.ParamsFile); err != nil {
		panic(err)
	}
	ap = &InputParameters.AssemblyParameters{}
	if err = ap.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- MeshSize\n\t- Equations\n\t- Forms")
	AssembleCmd.Flags().Bool("cpuprofile", false, "write a CPU profile of the structure build to the current directory")
	AssembleCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

func RunAssembly(ma *ModelAssembly, ap *InputParameters.AssemblyParameters) {
	var (
		err error
	)
	if ma.Verbose {
		logger.SetVerbose()
	}
	log := logger.Logger()
	ap.Print()

	msh := mesh.NewUnitSquare(ap.MeshSize)
	spaces := buildSpaces(ap, msh)
	wf := buildWeakForm(ap)

	sa := assembly.NewSelectiveAssembler()
	sa.SetForceDiagonalBlocks(ap.ForceDiagonalBlocks)
	if ap.Workers > 0 {
		sa.SetParallelDegree(ap.Workers)
	}
	if err = sa.SetWeakFormulation(wf); err != nil {
		panic(err)
	}

	if ma.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	var (
		mat    = utils.NewSparseSystem()
		rhs    = utils.NewVector()
		states = assembly.Traverse(spaces)
	)
	for iter := 0; iter < ap.Iterations; iter++ {
		start := time.Now()
		reused := sa.Tracker().MatrixStructureReusable()
		if err = sa.PrepareSparseStructure(mat, rhs, spaces, states); err != nil {
			panic(err)
		}
		log.Info().
			Int("iteration", iter).
			Int("elements", msh.NumElements()).
			Int("dofs", assembly.TotalDofs(spaces)).
			Int("nnz", mat.Nonzeros()).
			Bool("reused", reused).
			Dur("elapsed", time.Since(start)).
			Msg("sparse structure prepared")
	}
	nr, nc := mat.Dims()
	fmt.Printf("matrix %dx%d with %d stored entries after %d iterations\n",
		nr, nc, mat.Nonzeros(), ap.Iterations)
}

func buildSpaces(ap *InputParameters.AssemblyParameters, msh *mesh.Mesh) (spaces []assembly.Space) {
	spaces = make([]assembly.Space, ap.Equations)
	for i := range spaces {
		spaceType := "continuous"
		if i < len(ap.SpaceTypes) {
			spaceType = ap.SpaceTypes[i]
		}
		switch spaceType {
		case "continuous":
			spaces[i] = assembly.NewLinearSpace(msh)
		case "dg":
			spaces[i] = assembly.NewDGLinearSpace(msh)
		default:
			err := fmt.Errorf("unable to use space type named %s", spaceType)
			panic(err)
		}
	}
	return
}

func buildWeakForm(ap *InputParameters.AssemblyParameters) (wf *assembly.WeakForm) {
	wf = assembly.NewWeakForm(ap.Equations)
	for _, fp := range ap.Forms {
		markers := make([]types.MarkerTag, len(fp.Markers))
		for i, m := range fp.Markers {
			markers[i] = types.MarkerTag(m)
		}
		fd := assembly.FormDescriptor{
			Kind:       assembly.NewFormKind(fp.Kind),
			I:          fp.I,
			J:          fp.J,
			Scale:      fp.Scale,
			Everywhere: fp.Everywhere,
			Markers:    markers,
		}
		if err := wf.AddForm(fd); err != nil {
			panic(err)
		}
	}
	if len(ap.BlockWeights) != 0 {
		if err := wf.SetBlockWeights(ap.BlockWeights); err != nil {
			panic(err)
		}
	}
	return
}
