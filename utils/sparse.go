package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/types"
)

/*
SparseSystem is the global stiffness matrix storage with a two-stage
lifecycle:

	Prealloc(ndof) -> PreAddIJ(row, col)... -> Alloc()

During the first stage coordinates are registered into a hash set, so
re-registering the same (row, col) any number of times produces exactly one
storage slot. Alloc freezes the registered set into a CSR matrix whose
sparsity structure then stays fixed: Zero() resets the stored values without
touching the structure, which is what repeated Newton iterations need.
*/
type SparseSystem struct {
	nr, nc  int
	pattern map[types.CoordKey]struct{}
	M       *sparse.CSR
}

func NewSparseSystem() (R *SparseSystem) {
	R = &SparseSystem{
		pattern: make(map[types.CoordKey]struct{}),
	}
	return
}

// Prealloc drops any frozen structure and restarts coordinate registration
// for a square system of dimension ndof.
func (s *SparseSystem) Prealloc(ndof int) {
	s.nr, s.nc = ndof, ndof
	s.pattern = make(map[types.CoordKey]struct{})
	s.M = nil
}

func (s *SparseSystem) PreAddIJ(row, col int) {
	if row < 0 || row >= s.nr || col < 0 || col >= s.nc {
		panic(fmt.Errorf("coordinate (%d,%d) out of range for %dx%d system",
			row, col, s.nr, s.nc))
	}
	s.pattern[types.NewCoordKey(row, col)] = struct{}{}
}

func (s *SparseSystem) PreAddKey(ck types.CoordKey) {
	row, col := ck.RowCol()
	s.PreAddIJ(row, col)
}

// Alloc freezes the registered coordinate set into CSR storage with every
// value initialized to zero.
func (s *SparseSystem) Alloc() {
	var (
		keys = s.Coords()
		nnz  = len(keys)
		ia   = make([]int, s.nr+1)
		ja   = make([]int, nnz)
		data = make([]float64, nnz)
	)
	for i, ck := range keys {
		row, col := ck.RowCol()
		ia[row+1]++
		ja[i] = col
	}
	for i := 0; i < s.nr; i++ {
		ia[i+1] += ia[i]
	}
	s.M = sparse.NewCSR(s.nr, s.nc, ia, ja, data)
}

// Zero resets all stored values, keeping the sparsity structure intact.
func (s *SparseSystem) Zero() {
	if s.M == nil {
		return
	}
	data := s.M.RawMatrix().Data
	for i := range data {
		data[i] = 0
	}
}

func (s *SparseSystem) Free() {
	s.M = nil
	s.pattern = nil
	s.nr, s.nc = 0, 0
}

func (s *SparseSystem) Allocated() bool {
	return s.M != nil
}

func (s *SparseSystem) Nonzeros() (nnz int) {
	if s.M != nil {
		return s.M.NNZ()
	}
	return len(s.pattern)
}

// Coords returns the registered coordinate set in row-major order.
func (s *SparseSystem) Coords() (keys []types.CoordKey) {
	keys = make([]types.CoordKey, 0, len(s.pattern))
	for ck := range s.pattern {
		keys = append(keys, ck)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return
}

func (s *SparseSystem) Has(row, col int) (ok bool) {
	_, ok = s.pattern[types.NewCoordKey(row, col)]
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (s *SparseSystem) Dims() (r, c int) { return s.nr, s.nc }
func (s *SparseSystem) At(i, j int) float64 {
	if s.M == nil {
		return 0
	}
	return s.M.At(i, j)
}
func (s *SparseSystem) T() mat.Matrix { return s.M.T() }
func (s *SparseSystem) RawMatrix() *blas.SparseMatrix {
	return s.M.RawMatrix()
}
func (s *SparseSystem) Set(i, j int, v float64) {
	if s.M == nil {
		panic(fmt.Errorf("attempt to write to an unallocated system"))
	}
	s.M.Set(i, j, v)
}
