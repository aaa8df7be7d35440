package astrora

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a 3x3 matrix with a vector.
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	var o mat.VecDense
	o.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: o.AtVec(0), Y: o.AtVec(1), Z: o.AtVec(2)}
}

// PQW2ECI converts a vector from the perifocal frame to the inertial frame of the orbit's
// inclination i, argument of periapsis ω and right ascension of the ascending node Ω (radians).
func PQW2ECI(i, ω, Ω float64, v r3.Vec) r3.Vec {
	var m, tmp mat.Dense
	tmp.Mul(R1(-i), R3(-ω))
	m.Mul(R3(-Ω), &tmp)
	return MxV33(&m, v)
}
