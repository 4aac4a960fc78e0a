package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ConvexHull computes the convex hull of points with Andrew's monotone chain
// algorithm. The hull is returned counter-clockwise, starting from the point
// with the smallest (X, Y), without repeating the first vertex. Collinear
// vertices are dropped. Fewer than three points are returned unchanged.
func ConvexHull(points []orb.Point) []orb.Point {
	if len(points) < 3 {
		return points
	}

	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X() != sorted[j].X() {
			return sorted[i].X() < sorted[j].X()
		}
		return sorted[i].Y() < sorted[j].Y()
	})

	lower := make([]orb.Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]orb.Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Each chain ends where the other begins.
	hull := make([]orb.Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

// cross is the z component of (a-o) x (b-o); positive for a left turn.
func cross(o, a, b orb.Point) float64 {
	return (a.X()-o.X())*(b.Y()-o.Y()) - (a.Y()-o.Y())*(b.X()-o.X())
}

// Buffer pushes every hull vertex away from the vertex centroid by buffer
// along each axis independently. This is an axis-aligned approximation of a
// polygon offset, not a true geometric buffer. A vertex level with the
// centroid on an axis is not moved along that axis.
//
// Hulls with at least three vertices are returned as a closed ring. Anything
// smaller is degenerate and returned open so Contains rejects it.
func Buffer(hull []orb.Point, buffer float64) orb.Ring {
	if len(hull) == 0 {
		return orb.Ring{}
	}

	var cx, cy float64
	for _, p := range hull {
		cx += p.X()
		cy += p.Y()
	}
	cx /= float64(len(hull))
	cy /= float64(len(hull))

	ring := make(orb.Ring, 0, len(hull)+1)
	for _, p := range hull {
		ring = append(ring, orb.Point{
			p.X() + sign(p.X()-cx)*buffer,
			p.Y() + sign(p.Y()-cy)*buffer,
		})
	}

	if len(ring) >= 3 {
		ring = append(ring, ring[0])
	}
	return ring
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Degenerate reports whether ring encloses no area.
func Degenerate(ring orb.Ring) bool {
	if len(ring) < 3 {
		return true
	}
	return planar.Area(ring) == 0
}

// Contains reports whether p lies inside ring using ray casting. Points on
// the boundary count as inside. Degenerate rings contain nothing.
func Contains(ring orb.Ring, p orb.Point) bool {
	if Degenerate(ring) {
		return false
	}
	return planar.RingContains(ring, p)
}
