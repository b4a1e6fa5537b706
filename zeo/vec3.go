package zeo

import "math"

// Vec3 is a cartesian position or displacement.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length and false if v has (near) zero length.
func (v Vec3) Normalized() (Vec3, bool) {
	n := v.Norm()
	if n < GeomEpsilon {
		return Vec3{}, false
	}
	return v.Scale(1 / n), true
}

// Midpoint returns (v + w) / 2.
func (v Vec3) Midpoint(w Vec3) Vec3 {
	return v.Add(w).Scale(0.5)
}

// Dist returns the plain euclidean distance between v and w (no periodic images).
func (v Vec3) Dist(w Vec3) float64 {
	return v.Sub(w).Norm()
}

// GeomEpsilon is the length below which a displacement is considered zero.
const GeomEpsilon = 1e-9
