// Package geometry holds the planar geometry shared by the analysis stages:
// a k-d tree over sample locations, the convex hull and the buffered hull
// polygon used by the reliable prediction extent.
//
// Coordinates follow the orb convention: X is longitude, Y is latitude.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/kdtree"

	"spatialrpe/internal/models"
)

// site is a sample location that remembers its position in the caller's
// slice, since building the tree reorders its input.
type site struct {
	X, Y  float64
	Index int
}

// Compare implements the kdtree.Comparable interface
func (p site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p site) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two sites
func (p site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// sites is a collection of site that satisfies kdtree.Interface
type sites []site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot uses median of medians so the tree, and with it the tie-breaking
// between equidistant samples, is identical from run to run.
func (p sites) Pivot(d kdtree.Dim) int {
	plane := sitePlane{sites: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

// sitePlane implements sort.Interface and kdtree.SortSlicer for sites
type sitePlane struct {
	sites
	kdtree.Dim
}

func (p sitePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.sites[i].X < p.sites[j].X
	case 1:
		return p.sites[i].Y < p.sites[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	return sitePlane{sites: p.sites[start:end], Dim: p.Dim}
}

func (p sitePlane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}

// Index answers nearest-sample and fixed-radius queries over a set of
// sample locations.
type Index struct {
	tree  *kdtree.Tree
	count int
}

// NewIndex builds a spatial index over points. The caller's slice is not
// modified.
func NewIndex(points []models.SamplePoint) *Index {
	ss := make(sites, len(points))
	for i, p := range points {
		ss[i] = site{X: p.Lng, Y: p.Lat, Index: i}
	}

	ix := &Index{count: len(ss)}
	if len(ss) > 0 {
		ix.tree = kdtree.New(ss, false)
	}
	return ix
}

// Len returns the number of indexed samples.
func (ix *Index) Len() int {
	return ix.count
}

// Nearest returns the position of the closest sample in the slice the index
// was built from and its Euclidean distance. It returns -1 and +Inf for an
// empty index.
func (ix *Index) Nearest(lat, lng float64) (int, float64) {
	if ix.tree == nil {
		return -1, math.Inf(1)
	}
	c, d := ix.tree.Nearest(site{X: lng, Y: lat})
	if c == nil {
		return -1, math.Inf(1)
	}
	return c.(site).Index, math.Sqrt(d)
}

// CountWithin returns how many samples lie within radius (inclusive) of the
// query location.
func (ix *Index) CountWithin(lat, lng, radius float64) int {
	if ix.tree == nil || radius < 0 {
		return 0
	}
	keeper := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keeper, site{X: lng, Y: lat})

	n := 0
	for _, c := range keeper.Heap {
		// The keeper may still hold its distance sentinel.
		if c.Comparable != nil {
			n++
		}
	}
	return n
}

// Point converts a sample location to an orb point.
func Point(p models.SamplePoint) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// Points converts sample locations to orb points, preserving order.
func Points(samples []models.SamplePoint) []orb.Point {
	pts := make([]orb.Point, len(samples))
	for i, p := range samples {
		pts[i] = Point(p)
	}
	return pts
}
