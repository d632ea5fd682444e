// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import "math"

// A BigO names one of the candidate growth curves used for
// complexity fitting.
type BigO int

const (
	O1 BigO = iota
	ON
	ONSquared
	ONCubed
	OLogN
	ONLogN
)

var bigOStrings = [...]string{
	O1:        "constant (O(1))",
	ON:        "linear (O(N))",
	ONSquared: "quadratic (O(N^2))",
	ONCubed:   "cubic (O(N^3))",
	OLogN:     "logarithmic (O(log(N)))",
	ONLogN:    "linearithmic (O(N*log(N)))",
}

func (b BigO) String() string {
	if int(b) < len(bigOStrings) {
		return bigOStrings[b]
	}
	return "unknown"
}

// fittingCurve evaluates the basis function F for complexity b at n.
func fittingCurve(b BigO, n float64) float64 {
	switch b {
	case O1:
		return 1.0
	case ON:
		return n
	case ONSquared:
		return n * n
	case ONCubed:
		return n * n * n
	case OLogN:
		return math.Log2(n)
	case ONLogN:
		return n * math.Log2(n)
	}
	return 0.0
}

// An OLSRegress is the result of fitting mean time against a
// parameter value. The fitted function has the form
//
//	f(n) = A*F(n-C) + B
//
// where F is determined by Complexity, A is the least-squares
// coefficient, B is the minimal observed y value (baseline
// subtraction) and C is the first x value (origin shift). RMS is the
// residual root-mean-square normalized by the mean of y-B; it is
// comparable across candidate curves and was minimal for the chosen
// one.
type OLSRegress struct {
	Complexity BigO
	A          float64
	B          float64
	C          float64
	RMS        float64
}

// olsFitOne fits a single curve b to the shifted points, returning
// the coefficient and the normalized RMS residual.
func olsFitOne(b BigO, x, y []float64, xShift, yShift float64) (coef, rms float64) {
	var sigmaF2, sigmaY, sigmaYF float64
	for i := range x {
		f := fittingCurve(b, x[i]-xShift)
		yi := y[i] - yShift
		sigmaF2 += f * f
		sigmaY += yi
		sigmaYF += yi * f
	}
	coef = sigmaYF / sigmaF2
	var resid float64
	for i := range x {
		fit := coef * fittingCurve(b, x[i]-xShift)
		d := (y[i] - yShift) - fit
		resid += d * d
	}
	mean := sigmaY / float64(len(x))
	rms = math.Sqrt(resid/float64(len(x))) / mean
	return coef, rms
}

// OLSFit fits y(x) against the six candidate growth curves and picks
// the one with minimal normalized RMS residual. x and y must have
// equal, non-zero length and x must be sorted ascending.
func OLSFit(x, y []float64) OLSRegress {
	yShift := y[0]
	for _, v := range y[1:] {
		if v < yShift {
			yShift = v
		}
	}
	xShift := x[0]

	r := OLSRegress{B: yShift, C: xShift, Complexity: O1}
	r.A, r.RMS = olsFitOne(O1, x, y, xShift, yShift)
	for _, b := range []BigO{ON, ONSquared, ONCubed, OLogN, ONLogN} {
		coef, rms := olsFitOne(b, x, y, xShift, yShift)
		if rms < r.RMS {
			r.Complexity = b
			r.A = coef
			r.RMS = rms
		}
	}
	return r
}

// Approx evaluates the fitted curve at n, applying the same origin
// shift and baseline used during fitting.
func (r *OLSRegress) Approx(n float64) float64 {
	return r.A*fittingCurve(r.Complexity, n-r.C) + r.B
}
