package assembly

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofea/types"
)

// ScalingTolerance is the magnitude below which a scaling factor or block
// weight is treated as exactly zero for pattern-inclusion purposes. This is
// a deliberate approximation, not an error: a physical coefficient smaller
// than this will not get matrix storage allocated.
const ScalingTolerance = 1.e-12

type FormKind uint8

const (
	MatrixVol FormKind = iota
	MatrixSurf
	MatrixDG
	VectorVol
	VectorSurf
	VectorDG
)

func NewFormKind(label string) (fk FormKind) {
	switch strings.ToLower(label) {
	case "matrix_vol", "matrixvol":
		fk = MatrixVol
	case "matrix_surf", "matrixsurf":
		fk = MatrixSurf
	case "matrix_dg", "matrixdg":
		fk = MatrixDG
	case "vector_vol", "vectorvol":
		fk = VectorVol
	case "vector_surf", "vectorsurf":
		fk = VectorSurf
	case "vector_dg", "vectordg":
		fk = VectorDG
	default:
		err := fmt.Errorf("unable to use form kind named %s", label)
		panic(err)
	}
	return
}

func (fk FormKind) IsMatrix() (isMatrix bool) {
	return fk == MatrixVol || fk == MatrixSurf || fk == MatrixDG
}

func (fk FormKind) IsSurf() (isSurf bool) {
	return fk == MatrixSurf || fk == VectorSurf
}

func (fk FormKind) IsDG() (isDG bool) {
	return fk == MatrixDG || fk == VectorDG
}

func (fk FormKind) String() string {
	switch fk {
	case MatrixVol:
		return "MatrixVol"
	case MatrixSurf:
		return "MatrixSurf"
	case MatrixDG:
		return "MatrixDG"
	case VectorVol:
		return "VectorVol"
	case VectorSurf:
		return "VectorSurf"
	case VectorDG:
		return "VectorDG"
	default:
		panic("unknown option")
	}
}

/*
FormDescriptor is one weak-form contribution rule, a tagged variant over the
Matrix/Vector x Vol/Surf/DG combinations. It is immutable once registered
with a WeakForm. J is meaningful only for matrix kinds. A form either
assembles everywhere or only on the explicit marker set.
*/
type FormDescriptor struct {
	Kind       FormKind
	I, J       int
	Scale      float64
	Everywhere bool
	Markers    []types.MarkerTag
}

// MatchesMarker reports whether the form applies on the given marker.
func (fd *FormDescriptor) MatchesMarker(marker types.MarkerTag) (ok bool) {
	if fd.Everywhere {
		return true
	}
	for _, m := range fd.Markers {
		if m == marker {
			return true
		}
	}
	return false
}

/*
WeakForm is the registry of form descriptors for one problem, tagged with a
declared equation count. Registration validates block indices eagerly so a
misconfigured formulation never reaches an assembly pass. The block-enable
map over equation pairs is derived from the registered matrix forms and an
optional block-weight table.
*/
type WeakForm struct {
	neq          int
	forms        []FormDescriptor
	blockWeights [][]float64
}

func NewWeakForm(neq int) (wf *WeakForm) {
	if neq < 1 {
		panic("weak formulation needs at least one equation")
	}
	wf = &WeakForm{
		neq: neq,
	}
	return
}

func (wf *WeakForm) NumEquations() (neq int) {
	return wf.neq
}

func (wf *WeakForm) AddForm(fd FormDescriptor) (err error) {
	if fd.I < 0 || fd.I >= wf.neq {
		return configurationErrorf("form %s block index i=%d outside equation count %d",
			fd.Kind, fd.I, wf.neq)
	}
	if fd.Kind.IsMatrix() && (fd.J < 0 || fd.J >= wf.neq) {
		return configurationErrorf("form %s block index j=%d outside equation count %d",
			fd.Kind, fd.J, wf.neq)
	}
	wf.forms = append(wf.forms, fd)
	return
}

// SetBlockWeights installs an optional neq x neq table of per-block scale
// factors; a block whose weight is below ScalingTolerance is disabled.
// A nil table removes the restriction.
func (wf *WeakForm) SetBlockWeights(w [][]float64) (err error) {
	if w == nil {
		wf.blockWeights = nil
		return
	}
	if len(w) != wf.neq {
		return configurationErrorf("block weight table has %d rows, want %d", len(w), wf.neq)
	}
	for i := range w {
		if len(w[i]) != wf.neq {
			return configurationErrorf("block weight table row %d has %d columns, want %d",
				i, len(w[i]), wf.neq)
		}
	}
	wf.blockWeights = w
	return
}

// blockWeightOK is true when no weight table is installed or the (i,j)
// weight is above the zero tolerance.
func (wf *WeakForm) blockWeightOK(i, j int) (ok bool) {
	if wf.blockWeights == nil {
		return true
	}
	return math.Abs(wf.blockWeights[i][j]) >= ScalingTolerance
}

func (wf *WeakForm) IsDG() (isDG bool) {
	for i := range wf.forms {
		if wf.forms[i].Kind.IsDG() {
			return true
		}
	}
	return false
}

// NumForms counts the registered forms of one kind; the recalculation
// tracker sizes its per-form dirty arrays from these counts.
func (wf *WeakForm) NumForms(kind FormKind) (n int) {
	for i := range wf.forms {
		if wf.forms[i].Kind == kind {
			n++
		}
	}
	return
}

// EachForm visits the registered forms in registration order.
func (wf *WeakForm) EachForm(visit func(fd *FormDescriptor)) {
	for i := range wf.forms {
		visit(&wf.forms[i])
	}
}

/*
Blocks derives the block-enable map: blocks[i][j] is true when some matrix
form contributes to equation block (i,j) with a non-negligible scaling factor
and, if a weight table is installed, a non-negligible block weight. The map
is a whole-formulation property; per-element activity is refined later by the
form selector. forceDiagonal additionally enables every diagonal block, which
solvers requiring a full diagonal ask for.
*/
func (wf *WeakForm) Blocks(forceDiagonal bool) (blocks [][]bool, err error) {
	if len(wf.forms) == 0 {
		err = configurationErrorf("no forms registered, block-enable map is underivable")
		return
	}
	blocks = make([][]bool, wf.neq)
	for i := range blocks {
		blocks[i] = make([]bool, wf.neq)
		if forceDiagonal {
			blocks[i][i] = true
		}
	}
	for i := range wf.forms {
		fd := &wf.forms[i]
		if !fd.Kind.IsMatrix() {
			continue
		}
		if math.Abs(fd.Scale) < ScalingTolerance {
			continue
		}
		if !wf.blockWeightOK(fd.I, fd.J) {
			continue
		}
		blocks[fd.I][fd.J] = true
	}
	return
}
