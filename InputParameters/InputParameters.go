package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type AssemblyParameters struct {
	Title               string          `yaml:"Title"`
	MeshSize            int             `yaml:"MeshSize"` // Number of quads per side of the unit square
	Equations           int             `yaml:"Equations"`
	SpaceTypes          []string        `yaml:"SpaceTypes"` // One per equation: "continuous" or "dg"
	ForceDiagonalBlocks bool            `yaml:"ForceDiagonalBlocks"`
	Workers             int             `yaml:"Workers"` // Goroutines used for the structure build, 0 = NumCPU
	Iterations          int             `yaml:"Iterations"`
	BlockWeights        [][]float64     `yaml:"BlockWeights"`
	Forms               []FormParameter `yaml:"Forms"`
}

type FormParameter struct {
	Kind       string  `yaml:"Kind"` // matrix_vol, matrix_surf, matrix_dg, vector_vol, vector_surf, vector_dg
	I          int     `yaml:"I"`
	J          int     `yaml:"J"`
	Scale      float64 `yaml:"Scale"`
	Everywhere bool    `yaml:"Everywhere"`
	Markers    []int   `yaml:"Markers"`
}

func (ap *AssemblyParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ap); err != nil {
		return err
	}
	if ap.MeshSize <= 0 {
		ap.MeshSize = 1
	}
	if ap.Equations <= 0 {
		ap.Equations = 1
	}
	if ap.Iterations <= 0 {
		ap.Iterations = 1
	}
	return nil
}

func (ap *AssemblyParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ap.Title)
	fmt.Printf("%8d\t\t= MeshSize\n", ap.MeshSize)
	fmt.Printf("%8d\t\t= Equations\n", ap.Equations)
	fmt.Printf("%8d\t\t= Iterations\n", ap.Iterations)
	fmt.Printf("[%v]\t\t\t= SpaceTypes\n", ap.SpaceTypes)
	fmt.Printf("[%t]\t\t\t= ForceDiagonalBlocks\n", ap.ForceDiagonalBlocks)
	for i, f := range ap.Forms {
		fmt.Printf("Forms[%d] = {%s i=%d j=%d scale=%g everywhere=%t markers=%v}\n",
			i, f.Kind, f.I, f.J, f.Scale, f.Everywhere, f.Markers)
	}
}
