// Package geom provides the small amount of vector and angle math the
// capture and playback pipelines need.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a three-component vector. Positions are world units; rotations
// are Euler angles in degrees.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	d := v.Sub(o)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Lerp linearly interpolates between a and b by fraction t.
// t is not clamped.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// deltaAngle returns the signed shortest difference between two angles in
// degrees, in the range (-180, 180].
func deltaAngle(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// AngleDistance returns the angular distance in degrees between two Euler
// rotations: the largest per-axis shortest-arc delta.
func AngleDistance(a, b Vec3) float64 {
	dx := math.Abs(deltaAngle(a.X, b.X))
	dy := math.Abs(deltaAngle(a.Y, b.Y))
	dz := math.Abs(deltaAngle(a.Z, b.Z))
	return math.Max(dx, math.Max(dy, dz))
}

// LerpAngles interpolates between two Euler rotations by fraction t, taking
// the shortest arc on each axis so a step from 350° to 10° passes through 0°
// rather than sweeping backwards through 180°.
func LerpAngles(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: normalizeAngle(a.X + deltaAngle(a.X, b.X)*t),
		Y: normalizeAngle(a.Y + deltaAngle(a.Y, b.Y)*t),
		Z: normalizeAngle(a.Z + deltaAngle(a.Z, b.Z)*t),
	}
}

// normalizeAngle maps an angle into [0, 360).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
