// File: internal/motion/vector.go
package motion

import "math"

// Vector2D represents a point or vector in 2D screen space.
type Vector2D struct {
	X, Y float64
}

// Add returns the vector sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the vector difference of v and other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul returns the vector v scaled by the scalar factor.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// Mag calculates the magnitude (length) of the vector.
func (v Vector2D) Mag() float64 {
	// math.Hypot for numerical stability.
	return math.Hypot(v.X, v.Y)
}

// Dist calculates the Euclidean distance between v and other as points.
func (v Vector2D) Dist(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Midpoint returns the point halfway between v and other.
func (v Vector2D) Midpoint(other Vector2D) Vector2D {
	return Vector2D{X: (v.X + other.X) / 2, Y: (v.Y + other.Y) / 2}
}
