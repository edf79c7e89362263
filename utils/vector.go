package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Vector is the dense residual storage companion to SparseSystem. Unlike the
// matrix, Alloc(n) always discards the previous storage before allocating.
type Vector struct {
	V *mat.VecDense
}

func NewVector() (R *Vector) {
	R = &Vector{}
	return
}

func (v *Vector) Alloc(n int) {
	v.V = mat.NewVecDense(n, nil)
}

func (v *Vector) Zero() {
	if v.V == nil {
		return
	}
	v.V.Zero()
}

func (v *Vector) Free() {
	v.V = nil
}

func (v *Vector) Len() (n int) {
	if v.V == nil {
		return 0
	}
	return v.V.Len()
}

func (v *Vector) AtVec(i int) float64 {
	return v.V.AtVec(i)
}

func (v *Vector) SetVec(i int, val float64) {
	v.V.SetVec(i, val)
}
