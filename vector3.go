package orrery

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is an immutable 3D double-precision vector. It wraps gonum's
// spatial/r3.Vec so that the bulk of the algebra (Add, Sub, Scale, Dot,
// Cross, Norm) comes straight from gonum the way the teacher library leans
// on gonum for all of its vector/matrix math.
type Vector3 struct {
	v r3.Vec
}

// NewVector3 builds a Vector3 from its three components.
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{r3.Vec{X: x, Y: y, Z: z}}
}

// Zero is the additive identity.
var Zero = Vector3{}

// X, Y, Z return the components.
func (a Vector3) X() float64 { return a.v.X }
func (a Vector3) Y() float64 { return a.v.Y }
func (a Vector3) Z() float64 { return a.v.Z }

// Add returns a+b.
func (a Vector3) Add(b Vector3) Vector3 { return Vector3{r3.Add(a.v, b.v)} }

// Sub returns a-b.
func (a Vector3) Sub(b Vector3) Vector3 { return Vector3{r3.Sub(a.v, b.v)} }

// Scale returns a scaled by s.
func (a Vector3) Scale(s float64) Vector3 { return Vector3{r3.Scale(s, a.v)} }

// Div returns a scaled by 1/s. The caller must guard against s==0.
func (a Vector3) Div(s float64) Vector3 { return Vector3{r3.Scale(1/s, a.v)} }

// Dot returns the scalar (inner) product of a and b.
func (a Vector3) Dot(b Vector3) float64 { return r3.Dot(a.v, b.v) }

// Cross returns the vector (cross) product a x b.
func (a Vector3) Cross(b Vector3) Vector3 { return Vector3{r3.Cross(a.v, b.v)} }

// Norm returns the Euclidean magnitude |a|.
func (a Vector3) Norm() float64 { return r3.Norm(a.v) }

// Norm2 returns the squared magnitude |a|^2, avoiding the square root.
func (a Vector3) Norm2() float64 { return r3.Norm2(a.v) }

// Unit returns a normalized to length 1. Division by zero magnitude is
// undefined; the caller must guard against a zero vector (§3).
func (a Vector3) Unit() Vector3 { return Vector3{r3.Unit(a.v)} }

// IsZero reports whether a is exactly the zero vector.
func (a Vector3) IsZero() bool { return a.v.X == 0 && a.v.Y == 0 && a.v.Z == 0 }

// Project returns the projection of a onto b, i.e. the component of a
// parallel to b: (a.Dot(bHat)) * bHat.
func (a Vector3) Project(b Vector3) Vector3 {
	bn := b.Norm()
	if bn == 0 {
		return Zero
	}
	bHat := b.Scale(1 / bn)
	return bHat.Scale(a.Dot(bHat))
}

// Reflect returns a reflected across the plane whose normal is n (n need
// not be unit length; it is normalized internally).
func (a Vector3) Reflect(n Vector3) Vector3 {
	nHat := n.Unit()
	return a.Sub(nHat.Scale(2 * a.Dot(nHat)))
}

// ClampedToSpeed returns a vector in the same direction as a but with
// magnitude no greater than maxSpeed. Used to enforce the speed-of-light
// ceiling (§3 invariant, §4.3, §4.7).
func (a Vector3) ClampedToSpeed(maxSpeed float64) Vector3 {
	n := a.Norm()
	if n <= maxSpeed || n == 0 {
		return a
	}
	return a.Scale(maxSpeed / n)
}

// String implements fmt.Stringer for logging.
func (a Vector3) String() string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", a.v.X, a.v.Y, a.v.Z)
}
