package hgs

import "math"

// angleModulus is the circumference of the fixed-point polar-angle circle
// used by SWAP*'s circle-sector hull test: atan2 is rescaled so a full turn
// spans exactly angleModulus units.
const angleModulus = 65536

// Client is one node of the instance: the depot (id 0) or a customer.
type Client struct {
	ID              int
	X, Y            float64
	HasCoords       bool
	Demand          float64
	ServiceDuration float64

	// PolarAngle is atan2(y-y0, x-x0) rescaled to [0, angleModulus) around
	// the depot. It is only meaningful when HasCoords is true and is used
	// exclusively by SWAP*'s circle-sector overlap test.
	PolarAngle int32
}

// positiveMod reduces x into [0, m).
func positiveMod(x, m int32) int32 {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// computePolarAngle returns the fixed-point polar angle of (x,y) around the
// depot (x0,y0), matching Params.cpp's
// `32768*atan2(dy,dx)/pi` reduced into [0, angleModulus).
func computePolarAngle(x, y, x0, y0 float64) int32 {
	raw := 32768.0 * math.Atan2(y-y0, x-x0) / math.Pi
	return positiveMod(int32(raw), angleModulus)
}

// CircleSector is the minimal circular arc, on the angleModulus-circle, that
// encloses a set of polar angles. It is represented as a start angle and a
// non-negative length; the arc spans [start, start+length] modulo
// angleModulus, unrolled (length may exceed angleModulus only transiently
// during construction, never at rest).
type CircleSector struct {
	start, length int32
}

// NewCircleSector returns the degenerate sector containing only angle.
func NewCircleSector(angle int32) CircleSector {
	return CircleSector{start: positiveMod(angle, angleModulus), length: 0}
}

// contains reports whether angle already lies within the sector.
func (c CircleSector) contains(angle int32) bool {
	offset := positiveMod(angle-c.start, angleModulus)
	return offset <= c.length
}

// Extend grows the sector by the minimal amount needed to also enclose
// angle, choosing whichever side (forward from the current end, or backward
// from the current start) yields the shorter resulting arc.
func (c *CircleSector) Extend(angle int32) {
	if c.contains(angle) {
		return
	}
	offsetFromStart := positiveMod(angle-c.start, angleModulus)
	extendForward := offsetFromStart
	extendBackward := angleModulus - offsetFromStart + c.length
	if extendForward <= extendBackward {
		c.length = extendForward
	} else {
		c.start = positiveMod(angle, angleModulus)
		c.length = extendBackward
	}
}

// Overlap reports whether two circle sectors share at least one angle. Two
// circular arcs intersect iff one arc's start point falls inside the other
// arc (the symmetric case where one arc is fully nested inside the other
// without containing either endpoint cannot occur once both are extended
// from singleton points, since the degenerate start case is itself a
// contained point).
func Overlap(a, b CircleSector) bool {
	return a.contains(b.start) || b.contains(a.start)
}
