package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is a 2-D principal component view of a feature matrix
type Projection struct {
	Points    [][2]float64
	Explained [2]float64 // fraction of variance carried by each component
}

// ProjectPCA projects rows onto their first two principal components.
// Rows are centred before projection.
func ProjectPCA(rows [][]float64) (*Projection, error) {
	n := len(rows)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 rows for PCA, have %d", n)
	}
	d := len(rows[0])
	if d < 2 {
		return nil, fmt.Errorf("need at least 2 features for PCA, have %d", d)
	}

	x := mat.NewDense(n, d, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	// centre the data so projections match the decomposition
	centred := mat.DenseCopyOf(x)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centred.Set(i, j, col[i]-mean)
		}
	}

	_, components := vecs.Dims()
	proj := &Projection{Points: make([][2]float64, n)}
	for c := 0; c < 2 && c < components; c++ {
		axis := vecs.ColView(c)
		for i := 0; i < n; i++ {
			proj.Points[i][c] = mat.Dot(centred.RowView(i), axis)
		}
	}

	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total > 0 {
		for c := 0; c < 2 && c < len(vars); c++ {
			proj.Explained[c] = vars[c] / total
		}
	}
	return proj, nil
}
