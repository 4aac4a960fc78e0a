// Package analysis runs the full interpolation and reliability pipeline:
// lattice, surface estimation, classification, cross-validation,
// uncertainty, reliable prediction extent and accuracy metrics.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/classification"
	"spatialrpe/pkg/config"
	"spatialrpe/pkg/grid"
	"spatialrpe/pkg/interpolation"
	"spatialrpe/pkg/metrics"
	"spatialrpe/pkg/reliability"
	"spatialrpe/pkg/uncertainty"
	"spatialrpe/pkg/validation"
)

// ProgressFunc receives the percentage of the run completed and a short
// description of the stage about to start.
type ProgressFunc func(percent int, message string)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithProgress sets the progress callback. Without one, progress is logged
// at info level.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithClock overrides the source of the result timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator sequences the analysis stages. Stages run strictly one after
// another; each consumes the previous stage's output. An Orchestrator holds
// no per-run state and may be reused.
type Orchestrator struct {
	cfg      *config.Config
	logger   zerolog.Logger
	progress ProgressFunc
	now      func() time.Time
}

// New creates an orchestrator for cfg. A nil cfg selects the defaults.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := &Orchestrator{
		cfg:    cfg,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run is a convenience wrapper around New(cfg).Run.
func Run(ctx context.Context, points []models.SamplePoint, target string, predictors []string, cfg *config.Config, onProgress ProgressFunc) (*Results, error) {
	return New(cfg, WithProgress(onProgress)).Run(ctx, points, target, predictors)
}

// Run analyses points for the target variable. With one or more predictors
// the predictor-based estimator is used, otherwise plain inverse distance
// weighting. The context is checked between stages.
func (o *Orchestrator) Run(ctx context.Context, points []models.SamplePoint, target string, predictors []string) (*Results, error) {
	cfg := o.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(points) < models.MinSamples {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d",
			models.ErrInsufficientSamples, models.MinSamples, len(points))
	}
	if cfg.Analysis.Folds > len(points) {
		return nil, fmt.Errorf("%w: %d folds requested for %d samples",
			models.ErrInsufficientSamples, cfg.Analysis.Folds, len(points))
	}
	if _, err := models.TargetValues(points, target); err != nil {
		return nil, err
	}

	classMethod, err := classification.ParseMethod(cfg.Analysis.Classification)
	if err != nil {
		return nil, err
	}
	rpeMethod, err := reliability.ParseMethod(cfg.Reliability.Method,
		cfg.Reliability.Buffer, cfg.Reliability.UncertaintyThreshold)
	if err != nil {
		return nil, err
	}

	kind := models.SingleVariable
	var regressor interpolation.Regressor = interpolation.IDW{Target: target, Power: cfg.Analysis.Power}
	if len(predictors) > 0 {
		kind = models.PredictorBased
		regressor = interpolation.Heuristic{Target: target, Predictors: predictors, Power: cfg.Analysis.Power}
	}

	log := o.logger.With().
		Str("target", target).
		Str("analysis", string(kind)).
		Int("samples", len(points)).
		Logger()

	// Step 1: lattice
	if err := o.step(ctx, 5, "Building prediction grid..."); err != nil {
		return nil, err
	}
	lattice, err := grid.Build(points, cfg.Analysis.Resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	log.Debug().Int("rows", lattice.Rows).Int("cols", lattice.Cols).Msg("grid built")

	// Step 2: continuous surface
	if err := o.step(ctx, 20, "Interpolating surface..."); err != nil {
		return nil, err
	}
	model, err := regressor.Fit(points)
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}
	values, err := interpolation.PredictGrid(ctx, model, lattice)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("cells", len(values)).Msg("surface interpolated")

	// Step 3: classes
	if err := o.step(ctx, 40, "Classifying surface..."); err != nil {
		return nil, err
	}
	classes, breaks, err := classification.Classify(values, cfg.Analysis.Classes, classMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to classify surface: %w", err)
	}
	log.Debug().Floats64("breaks", breaks).Msg("surface classified")

	// Step 4: cross-validation, and uncertainty for predictor runs
	if err := o.step(ctx, 55, "Cross-validating..."); err != nil {
		return nil, err
	}
	cv, err := validation.CrossValidate(ctx, points, target, cfg.Analysis.Folds, cfg.Analysis.Power)
	if err != nil {
		return nil, fmt.Errorf("failed to cross-validate: %w", err)
	}
	residuals := cv.Propagate(lattice)

	var unc []float64
	if kind == models.PredictorBased {
		if err := o.step(ctx, 65, "Estimating uncertainty..."); err != nil {
			return nil, err
		}
		unc, err = uncertainty.Estimate(points, lattice)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate uncertainty: %w", err)
		}
	}
	log.Debug().Int("folds", cv.Folds).Msg("cross-validation complete")

	// Step 5: reliable prediction extent
	if err := o.step(ctx, 80, "Computing reliable prediction extent..."); err != nil {
		return nil, err
	}
	extent, err := reliability.Compute(points, lattice, rpeMethod, cfg.Reliability.Buffer, unc)
	if err != nil {
		return nil, fmt.Errorf("failed to compute reliable prediction extent: %w", err)
	}
	if extent.Degenerate {
		log.Warn().Int("hullVertices", len(extent.Hull)).Msg("samples enclose no area; hull-based reliability is empty")
	}

	// Step 6: metrics
	if err := o.step(ctx, 95, "Calculating accuracy metrics..."); err != nil {
		return nil, err
	}
	observed := make([]float64, len(cv.Residuals))
	predicted := make([]float64, len(cv.Residuals))
	for i, r := range cv.Residuals {
		observed[i] = r.Observed
		predicted[i] = r.Predicted
	}
	summary, err := metrics.FromResiduals(observed, predicted)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate metrics: %w", err)
	}

	res := &Results{
		Type:              kind,
		TargetVariable:    target,
		Predictors:        append([]string(nil), predictors...),
		Algorithm:         cfg.Analysis.Algorithm,
		Lattice:           *lattice,
		MinValue:          floats.Min(values),
		MaxValue:          floats.Max(values),
		Breaks:            breaks,
		NumClasses:        cfg.Analysis.Classes,
		Residuals:         cv.Residuals,
		RPEMethod:         extent.Method,
		RPEPolygon:        extent.Polygon,
		ReliableCells:     extent.Count(),
		DegenerateHull:    extent.Degenerate,
		Metrics:           summary,
		FeatureImportance: model.FeatureImportance(),
		Timestamp:         o.now().UTC(),
	}
	res.Cells = annotate(lattice, surfaces{
		values:      values,
		classes:     classes,
		residuals:   residuals,
		uncertainty: unc,
		reliable:    extent.Reliable,
	}, kind)

	o.report(100, "Analysis complete")
	log.Info().
		Int("cells", len(res.Cells)).
		Int("reliable", res.ReliableCells).
		Float64("rmse", summary.RMSE).
		Float64("r2", summary.R2).
		Msg("analysis complete")

	return res, nil
}

// surfaces are the per-stage outputs, each indexed like the lattice.
type surfaces struct {
	values      []float64
	classes     []int
	residuals   []float64
	uncertainty []float64
	reliable    []bool
}

// annotate merges the stage surfaces into one set of grid cells. Every
// annotation gets its own copy so cells never alias stage output.
// Single-variable runs carry absolute accuracy; predictor-based runs carry
// signed residuals and uncertainty.
func annotate(l *grid.Lattice, s surfaces, kind models.AnalysisType) []models.GridCell {
	var accuracy []float64
	if kind == models.SingleVariable {
		accuracy = validation.Accuracy(s.residuals)
	}

	cells := l.Cells()
	for i := range cells {
		cells[i].Value = s.values[i]

		class := s.classes[i]
		cells[i].Class = &class

		ok := s.reliable[i]
		cells[i].Reliable = &ok

		if kind == models.PredictorBased {
			r := s.residuals[i]
			cells[i].Residual = &r
			u := s.uncertainty[i]
			cells[i].Uncertainty = &u
		} else {
			a := accuracy[i]
			cells[i].Accuracy = &a
		}
	}
	return cells
}

// step checks for cancellation and reports the stage about to run.
func (o *Orchestrator) step(ctx context.Context, percent int, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis cancelled before %q: %w", message, err)
	}
	o.report(percent, message)
	return nil
}

func (o *Orchestrator) report(percent int, message string) {
	if o.progress != nil {
		o.progress(percent, message)
		return
	}
	o.logger.Info().Int("percent", percent).Msg(message)
}
