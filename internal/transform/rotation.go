package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EquatorialToECEF returns the unit direction of a catalogue position in
// ECEF axes for the Greenwich sidereal angle gmst (radians).
//
//	r_ECEF = R3(θ) * r_ECI
//
// where R3(θ) is a rotation about the Z-axis by angle θ.
func EquatorialToECEF(raDeg, decDeg, gmst float64) [3]float64 {
	sinRA, cosRA := math.Sincos(raDeg * math.Pi / 180.0)
	sinDec, cosDec := math.Sincos(decDeg * math.Pi / 180.0)

	eci := mat.NewVecDense(3, []float64{cosDec * cosRA, cosDec * sinRA, sinDec})

	var ecef mat.VecDense
	ecef.MulVec(R3(gmst), eci)
	return [3]float64{ecef.AtVec(0), ecef.AtVec(1), ecef.AtVec(2)}
}

// R3 is the frame rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}
