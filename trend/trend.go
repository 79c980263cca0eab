// Package trend fits least-squares polynomial trendlines over a series,
// using the row position as the abscissa.
package trend

import (
	"errors"
	"fmt"
	"math"

	"minestat/table"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	MinDegree = 1
	MaxDegree = 4
)

var (
	ErrDegree       = errors.New("trend degree out of range")
	ErrTooFewPoints = errors.New("too few observed points for trend degree")
)

// Polynomial holds coefficients in ascending order of power.
type Polynomial struct {
	coeffs []float64
}

func (p *Polynomial) Degree() int {
	return len(p.coeffs) - 1
}

func (p *Polynomial) Coefficients() []float64 {
	out := make([]float64, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

// Eval evaluates the polynomial with Horner's rule.
func (p *Polynomial) Eval(x float64) float64 {
	y := 0.0
	for k := len(p.coeffs) - 1; k >= 0; k-- {
		y = y*x + p.coeffs[k]
	}
	return y
}

// Line evaluates the polynomial at rows 0..n-1.
func (p *Polynomial) Line(n int) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = p.Eval(float64(i))
	}
	return ys
}

// Fit fits a polynomial of the given degree to the observed values of a
// series, skipping missing rows.
func Fit(values []float64, degree int) (*Polynomial, error) {
	if degree < MinDegree || degree > MaxDegree {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrDegree, degree, MinDegree, MaxDegree)
	}

	var xs, ys []float64
	for i, v := range values {
		if table.IsMissing(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(xs) < degree+1 {
		return nil, fmt.Errorf("%w: %d points, degree %d", ErrTooFewPoints, len(xs), degree)
	}

	// Powers of the raw row index get large quickly, so the fit runs on
	// x/scale and the coefficients are mapped back afterwards.
	scale := math.Max(floats.Max(xs), 1)
	design := mat.NewDense(len(xs), degree+1, nil)
	for r, x := range xs {
		u := x / scale
		pow := 1.0
		for k := 0; k <= degree; k++ {
			design.Set(r, k, pow)
			pow *= u
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, mat.NewVecDense(len(ys), ys)); err != nil {
		return nil, fmt.Errorf("trend fit: %w", err)
	}

	coeffs := make([]float64, degree+1)
	for k := range coeffs {
		coeffs[k] = beta.AtVec(k) / math.Pow(scale, float64(k))
	}
	return &Polynomial{coeffs: coeffs}, nil
}
