package reliability

import (
	"fmt"

	"github.com/paulmach/orb"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/geometry"
)

// Method decides whether a lattice cell is reliable. The set of methods is
// closed: ConvexHull, Distance, KernelDensity, Uncertainty and Combined.
type Method interface {
	// Name is the configuration name of the method
	Name() string

	usesUncertainty() bool
	reliable(s *scene, i int, p orb.Point) bool
}

// scene is what a method may consult for a single run.
type scene struct {
	ring        orb.Ring
	index       *geometry.Index
	uncertainty []float64
}

// ConvexHull marks cells inside the buffered convex hull.
type ConvexHull struct{}

func (ConvexHull) Name() string          { return "convex-hull" }
func (ConvexHull) usesUncertainty() bool { return false }

func (ConvexHull) reliable(s *scene, _ int, p orb.Point) bool {
	return geometry.Contains(s.ring, p)
}

// Distance marks cells whose nearest sample is within 3*Buffer.
type Distance struct {
	Buffer float64
}

func (Distance) Name() string          { return "distance" }
func (Distance) usesUncertainty() bool { return false }

func (m Distance) reliable(s *scene, _ int, p orb.Point) bool {
	_, d := s.index.Nearest(p.Y(), p.X())
	return d <= 3*m.Buffer
}

// KernelDensity marks cells with at least two samples within 5*Buffer.
type KernelDensity struct {
	Buffer float64
}

func (KernelDensity) Name() string          { return "kernel-density" }
func (KernelDensity) usesUncertainty() bool { return false }

func (m KernelDensity) reliable(s *scene, _ int, p orb.Point) bool {
	return s.index.CountWithin(p.Y(), p.X(), 5*m.Buffer) >= 2
}

// Uncertainty marks cells whose uncertainty is below Threshold.
type Uncertainty struct {
	Threshold float64
}

func (Uncertainty) Name() string          { return "uncertainty" }
func (Uncertainty) usesUncertainty() bool { return true }

func (m Uncertainty) reliable(s *scene, i int, _ orb.Point) bool {
	return s.uncertainty[i] < m.Threshold
}

// Combined requires a cell to be inside the buffered hull, to have a sample
// within 4*Buffer and to have uncertainty below Threshold.
type Combined struct {
	Buffer    float64
	Threshold float64
}

func (Combined) Name() string          { return "combined" }
func (Combined) usesUncertainty() bool { return true }

func (m Combined) reliable(s *scene, i int, p orb.Point) bool {
	if !geometry.Contains(s.ring, p) {
		return false
	}
	if s.index.CountWithin(p.Y(), p.X(), 4*m.Buffer) < 1 {
		return false
	}
	return s.uncertainty[i] < m.Threshold
}

// ParseMethod builds the method named in configuration from the shared
// buffer and threshold settings.
func ParseMethod(name string, buffer, threshold float64) (Method, error) {
	switch name {
	case "", "convex-hull":
		return ConvexHull{}, nil
	case "distance":
		return Distance{Buffer: buffer}, nil
	case "kernel-density":
		return KernelDensity{Buffer: buffer}, nil
	case "uncertainty":
		return Uncertainty{Threshold: threshold}, nil
	case "combined":
		return Combined{Buffer: buffer, Threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("%w: unknown reliability method %q", models.ErrInvalidConfig, name)
	}
}
