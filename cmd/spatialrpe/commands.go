package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"spatialrpe/pkg/analysis"
	"spatialrpe/pkg/config"
	"spatialrpe/pkg/export"
	"spatialrpe/pkg/loader"
)

var (
	configPath string
	verbose    bool

	inputPath   string
	target      string
	predictors  []string
	resolution  float64
	rpeMethod   string
	geojsonPath string
	asciiPath   string
	asciiLayer  string
)

var rootCmd = &cobra.Command{
	Use:   "spatialrpe",
	Short: "Interpolate sample points and map where predictions can be trusted",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run interpolation, cross-validation and reliable prediction extent on a point file",
	RunE:  runAnalyze,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage analysis configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.CreateDefaultConfigFile(path); err != nil {
			return err
		}
		fmt.Printf("Default configuration written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "spatialrpe.yaml", "Configuration file (defaults are used if it does not exist)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	f := analyzeCmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "Point file (.csv, .geojson, .xlsx)")
	f.StringVarP(&target, "target", "t", "", "Target variable to interpolate")
	f.StringSliceVarP(&predictors, "predictors", "p", nil, "Predictor variables (enables predictor-based analysis)")
	f.Float64Var(&resolution, "resolution", 0, "Grid resolution in coordinate units (overrides config)")
	f.StringVar(&rpeMethod, "rpe-method", "", "Reliability method (overrides config)")
	f.StringVar(&geojsonPath, "geojson", "", "Write the annotated grid and extent as GeoJSON")
	f.StringVar(&asciiPath, "ascii", "", "Write one surface as an ESRI ASCII grid")
	f.StringVar(&asciiLayer, "ascii-layer", analysis.SurfaceValue, "Surface written by --ascii")
	_ = analyzeCmd.MarkFlagRequired("input")
	_ = analyzeCmd.MarkFlagRequired("target")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(analyzeCmd, configCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if resolution != 0 {
		cfg.Analysis.Resolution = resolution
	}
	if rpeMethod != "" {
		cfg.Reliability.Method = rpeMethod
	}
	if geojsonPath == "" {
		geojsonPath = cfg.Output.GeoJSON
	}
	if asciiPath == "" {
		asciiPath = cfg.Output.ASCIIGrid
	}
	if cfg.Output.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	points, err := loader.Load(inputPath)
	if err != nil {
		return err
	}
	log.Info().Str("input", inputPath).Int("points", len(points)).Msg("points loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orchestrator := analysis.New(cfg,
		analysis.WithLogger(log.Logger),
		analysis.WithProgress(func(percent int, message string) {
			log.Info().Msgf("[%3d%%] %s", percent, message)
		}),
	)

	startTime := time.Now()
	res, err := orchestrator.Run(ctx, points, target, predictors)
	if err != nil {
		return err
	}
	printSummary(res, time.Since(startTime))

	if geojsonPath != "" {
		if err := export.WriteGeoJSONFile(geojsonPath, res); err != nil {
			return err
		}
		fmt.Printf("GeoJSON saved to: %s\n", geojsonPath)
	}
	if asciiPath != "" {
		if err := export.WriteASCIIGridFile(asciiPath, res, asciiLayer); err != nil {
			return err
		}
		fmt.Printf("ASCII grid (%s) saved to: %s\n", asciiLayer, asciiPath)
	}
	return nil
}

func printSummary(res *analysis.Results, elapsed time.Duration) {
	fmt.Println("================================")
	fmt.Printf("Analysis: %s of %q", res.Type, res.TargetVariable)
	if len(res.Predictors) > 0 {
		fmt.Printf(" using %s", strings.Join(res.Predictors, ", "))
	}
	fmt.Println()
	fmt.Println("================================")
	fmt.Printf("Grid: %d x %d cells at %g\n", res.Lattice.Cols, res.Lattice.Rows, res.Lattice.Resolution)
	fmt.Printf("Surface range: %.4f .. %.4f\n", res.MinValue, res.MaxValue)
	fmt.Printf("Reliable cells (%s): %d of %d\n", res.RPEMethod, res.ReliableCells, len(res.Cells))
	if res.DegenerateHull {
		fmt.Println("Warning: samples enclose no area; hull-based extent is empty")
	}

	fmt.Printf("\nCross-validation metrics (%d samples):\n", res.Metrics.SampleCount)
	fmt.Printf("=======================================\n")
	fmt.Printf("Root Mean Square Error (RMSE): %.6f\n", res.Metrics.RMSE)
	fmt.Printf("Mean Absolute Error (MAE): %.6f\n", res.Metrics.MAE)
	fmt.Printf("Coefficient of Determination (R2): %.3f\n", res.Metrics.R2)
	fmt.Printf("Bias (predicted - observed): %.6f (p = %.3f)\n", res.Metrics.Bias, res.Metrics.BiasPValue)

	if len(res.FeatureImportance) > 0 {
		fmt.Println("\nFeature importance:")
		for _, fi := range res.FeatureImportance {
			fmt.Printf("- %s: %.3f\n", fi.Feature, fi.Importance)
		}
	}
	fmt.Printf("\nCompleted in %.2f seconds\n", elapsed.Seconds())
}
