package geometry

import (
	"fmt"
	"math"
)

// Transform is a rigid-body transform stored as a 4x4 row-major matrix:
// m00,m01,m02,m03, m10,... World coordinates are obtained by multiplying
// a local column vector on the right.
type Transform [16]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a pure translation transform.
func Translate(x, y, z float64) Transform {
	return Transform{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// RotateBasis returns the rotation that maps the local +Z axis onto forward
// and the local +Y axis onto up (orthogonalised against forward). It returns
// an error if either vector is zero or the two are colinear.
func RotateBasis(forward, up Vec3) (Transform, error) {
	if forward.IsZero() {
		return Identity(), fmt.Errorf("forward vector must be non-zero")
	}
	if up.IsZero() {
		return Identity(), fmt.Errorf("up vector must be non-zero")
	}

	z := forward.Normalize()
	y := up.Sub(z.Scale(up.Dot(z)))
	if y.Length() < 1e-12 {
		return Identity(), fmt.Errorf("up vector is colinear with the forward vector")
	}
	y = y.Normalize()
	x := y.Cross(z)

	// Basis vectors become the matrix columns.
	return Transform{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		0, 0, 0, 1,
	}, nil
}

// Mul returns the composition t * o (o applied first).
func (t Transform) Mul(o Transform) Transform {
	var r Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += t[i*4+k] * o[k*4+j]
			}
			r[i*4+j] = sum
		}
	}
	return r
}

// ApplyPoint transforms a point, including the translation component.
func (t Transform) ApplyPoint(p Point3) Point3 {
	return Point3{
		X: t[0]*p.X + t[1]*p.Y + t[2]*p.Z + t[3],
		Y: t[4]*p.X + t[5]*p.Y + t[6]*p.Z + t[7],
		Z: t[8]*p.X + t[9]*p.Y + t[10]*p.Z + t[11],
	}
}

// ApplyVector transforms a direction, ignoring the translation component.
func (t Transform) ApplyVector(v Vec3) Vec3 {
	return Vec3{
		X: t[0]*v.X + t[1]*v.Y + t[2]*v.Z,
		Y: t[4]*v.X + t[5]*v.Y + t[6]*v.Z,
		Z: t[8]*v.X + t[9]*v.Y + t[10]*v.Z,
	}
}

// Translation returns the translation component of the transform.
func (t Transform) Translation() (x, y, z float64) {
	return t[3], t[7], t[11]
}

// ObserverTransform derives the placement transform for an observer at
// origin looking along direction: translate(origin) composed with a basis
// rotation taking local +Z onto direction. The up reference is +Z unless
// direction is parallel to the Z axis, in which case +X is used to keep
// the basis non-degenerate.
func ObserverTransform(origin Point3, direction Vec3) (Transform, error) {
	if direction.IsZero() {
		return Identity(), fmt.Errorf("observer direction must be non-zero")
	}

	d := direction.Normalize()
	up := NewVec3(0, 0, 1)
	if math.Abs(d.X) < 1e-12 && math.Abs(d.Y) < 1e-12 {
		up = NewVec3(1, 0, 0)
	}

	rotation, err := RotateBasis(direction, up)
	if err != nil {
		return Identity(), err
	}
	return Translate(origin.X, origin.Y, origin.Z).Mul(rotation), nil
}
