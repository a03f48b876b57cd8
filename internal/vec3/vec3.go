// Package vec3 provides operations on flat float64 buffers holding packed
// 3-component vectors. Vector i occupies slots 3i, 3i+1 and 3i+2.
package vec3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Create returns a zeroed buffer of n vectors.
func Create(n int) []float64 {
	if n < 1 {
		n = 1
	}
	return make([]float64, n*3)
}

// FromValues returns a copy of values as a vector buffer.
func FromValues(values []float64) []float64 {
	b := make([]float64, len(values))
	copy(b, values)
	return b
}

// Count returns the number of whole vectors in b.
func Count(b []float64) int { return len(b) / 3 }

func Set(b []float64, i int, x, y, z float64) {
	ix := i * 3
	b[ix] = x
	b[ix+1] = y
	b[ix+2] = z
}

func SetVec(b []float64, i int, v r3.Vec) {
	Set(b, i, v.X, v.Y, v.Z)
}

// At reads vector i as a value.
func At(b []float64, i int) r3.Vec {
	ix := i * 3
	return r3.Vec{X: b[ix], Y: b[ix+1], Z: b[ix+2]}
}

// Copy writes vector i into out and returns it.
func Copy(b []float64, i int, out []float64) []float64 {
	ix := i * 3
	out[0] = b[ix]
	out[1] = b[ix+1]
	out[2] = b[ix+2]
	return out
}

func LengthSq(b []float64, i int) float64 {
	return r3.Norm2(At(b, i))
}

func Length(b []float64, i int) float64 {
	return math.Sqrt(LengthSq(b, i))
}

func DistanceSq(b []float64, a, c int) float64 {
	return r3.Norm2(r3.Sub(At(b, a), At(b, c)))
}

func Distance(b []float64, a, c int) float64 {
	return math.Sqrt(DistanceSq(b, a, c))
}

// Normalize scales vector i to unit length in place. Zero-length vectors are
// left untouched.
func Normalize(b []float64, i int) {
	v := At(b, i)
	lenSq := r3.Norm2(v)
	if lenSq == 0 {
		return
	}
	SetVec(b, i, r3.Scale(1/math.Sqrt(lenSq), v))
}

// Angle returns the angle in radians at vertex v between the rays to a and c.
// The cosine is clamped to [-1, 1] so rounding drift on collinear input cannot
// push acos out of its domain. A zero-length ray gives 0.
func Angle(b []float64, a, v, c int) float64 {
	pv := At(b, v)
	va := r3.Sub(At(b, a), pv)
	vc := r3.Sub(At(b, c), pv)

	vaLenSq := r3.Norm2(va)
	vcLenSq := r3.Norm2(vc)
	if vaLenSq == 0 || vcLenSq == 0 {
		return 0
	}

	cos := r3.Dot(va, vc) / math.Sqrt(vaLenSq*vcLenSq)
	return Acos(cos)
}

// Acos is math.Acos with its argument clamped into the valid domain.
func Acos(x float64) float64 {
	return math.Acos(Clamp(-1, 1, x))
}

// Clamp limits v to [min, max].
func Clamp(min, max, v float64) float64 {
	return math.Min(math.Max(v, min), max)
}

// Finite reports whether every component of v is neither NaN nor infinite.
func Finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Valid reports whether every slot of b is finite.
func Valid(b []float64) bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
