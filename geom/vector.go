package geom

import (
	"errors"
	"math"
)

// ErrDegenerateVector is returned when a direction is requested from a
// zero-length vector, which happens whenever two positions coincide.
var ErrDegenerateVector = errors.New("degenerate vector")

// epsilon below which a magnitude is treated as zero.
const epsilon = 1e-9

// Vec is a 2D point or direction in field coordinates.
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }
func (v Vec) Midpoint(o Vec) Vec { return Vec{(v.X + o.X) / 2, (v.Y + o.Y) / 2} }
func (v Vec) IsZero() bool { return v.Len() < epsilon }

// Normalize returns the unit vector pointing the same way as v.
func (v Vec) Normalize() (Vec, error) {
	l := v.Len()
	if l < epsilon {
		return Vec{}, ErrDegenerateVector
	}
	return Vec{v.X / l, v.Y / l}, nil
}

// Rotate turns v counter-clockwise by deg degrees.
func (v Vec) Rotate(deg float64) Vec {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// AngleBetween returns the unsigned angle between a and b in degrees.
// The cosine is clamped to [-1, 1] before the arccosine so rounding noise
// on parallel vectors cannot produce NaN.
func AngleBetween(a, b Vec) (float64, error) {
	na, err := a.Normalize()
	if err != nil {
		return 0, err
	}
	nb, err := b.Normalize()
	if err != nil {
		return 0, err
	}
	cos := clamp(na.Dot(nb), -1, 1)
	return math.Acos(cos) * 180 / math.Pi, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rect is the playable field, anchored at the origin.
type Rect struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ContainsStrict reports whether p lies inside the rect with at least
// margin clearance from every edge. Points on the boundary are outside.
func (r Rect) ContainsStrict(p Vec, margin float64) bool {
	return p.X > margin && p.X < r.Width-margin &&
		p.Y > margin && p.Y < r.Height-margin
}

// Circle is a body with a collision radius, used for allies in fire checks.
type Circle struct {
	Center Vec
	Radius float64
}
