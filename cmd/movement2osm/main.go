package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/LdDl/movement2osm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagCfg    = movement2osm.DefaultConfig()
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "movement2osm",
	Short:         "Join mobility speed datasets with OpenStreetMap road network",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var joinCmd = &cobra.Command{
	Use:   "join <boundary.geojson>",
	Short: "Join speed measurements to OSM way geometries within boundary polygon",
	Long: `Join speed measurements to OSM way geometries within boundary polygon.

Segment and junction identifiers of the measurement file are translated to OSM way and
node identifiers via crosswalk files. Every measurement row whose way geometry can be
reconstructed is written as GeoJSON Feature. Output is written incrementally.`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file. Flags set explicitly override its values")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	flags := joinCmd.Flags()
	flags.StringVarP(&flagCfg.Out, "out", "o", "", "Output file. Default is measurement file name with '.out.geojson' suffix")
	flags.StringVar(&flagCfg.TileSource, "tile-source", flagCfg.TileSource, "Road network source. Must be path to OSM extract (*.osm, *.xml, *.osm.pbf): default value names the tile set only and is rejected")
	flags.IntVar(&flagCfg.TileHierarchy, "tile-hierarchy", flagCfg.TileHierarchy, "Maximum road class to load: 0 (motorway) .. 8 (everything)")
	flags.Float64Var(&flagCfg.BufferMeters, "buffer", flagCfg.BufferMeters, "Buffer around boundary polygon (meters)")
	flags.BoolVar(&flagCfg.Routing, "routing", false, "Route between junction nodes when they are not placed on the crosswalked way")
	flags.IntVar(&flagCfg.FilterDay, "filter-day", flagCfg.FilterDay, "Reserved. Not applied")
	flags.IntVar(&flagCfg.FilterHour, "filter-hour", flagCfg.FilterHour, "Reserved. Not applied")
	flags.BoolVar(&flagCfg.DriveLeftSide, "drive-left-side", false, "Offset lane geometry for left side driving")
	flags.StringVar(&flagCfg.MovementSegments, "movement-segments", "", "Segment to OSM way crosswalk file (required)")
	flags.StringVar(&flagCfg.MovementJunctions, "movement-junctions", "", "Junction to OSM node crosswalk file (required)")
	flags.StringVar(&flagCfg.MovementQuarterlySpeeds, "movement-quarterly-speeds", "", "Quarterly aggregated speeds file")
	flags.StringVar(&flagCfg.MovementHourlySpeeds, "movement-hourly-speeds", "", "Hourly speeds file")
	flags.BoolVarP(&flagCfg.Stats, "stats", "s", false, "Reserved. Not applied")

	rootCmd.AddCommand(joinCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runJoin(cmd *cobra.Command, args []string) error {
	logger, err := movement2osm.NewLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := resolveConfig(cmd.Flags(), args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline := movement2osm.NewPipeline(
		cfg,
		movement2osm.OSMIndexBuilder(logger),
		movement2osm.WithLogger(logger),
		movement2osm.WithProgress(movement2osm.LogProgress(logger, 100000)),
	)
	counters, err := pipeline.Run(ctx)
	if err != nil {
		var cfgErr *movement2osm.ConfigError
		if errors.As(err, &cfgErr) {
			// User mistake: report it and leave without output
			for _, problem := range cfgErr.Problems {
				logger.Error(problem)
			}
			return nil
		}
		return err
	}
	fmt.Printf("matched: %d\nunmatched: %d\nmissing: %d\n", counters.Matched, counters.Unmatched, counters.Missing)
	return nil
}

// resolveConfig merges configuration file (if any) with flags set on command line
func resolveConfig(flags *pflag.FlagSet, boundary string) (*movement2osm.Config, error) {
	if configFile == "" {
		cfg := *flagCfg
		cfg.Boundary = boundary
		return &cfg, nil
	}
	cfg, err := movement2osm.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	cfg.Boundary = boundary
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "out":
			cfg.Out = flagCfg.Out
		case "tile-source":
			cfg.TileSource = flagCfg.TileSource
		case "tile-hierarchy":
			cfg.TileHierarchy = flagCfg.TileHierarchy
		case "buffer":
			cfg.BufferMeters = flagCfg.BufferMeters
		case "routing":
			cfg.Routing = flagCfg.Routing
		case "filter-day":
			cfg.FilterDay = flagCfg.FilterDay
		case "filter-hour":
			cfg.FilterHour = flagCfg.FilterHour
		case "drive-left-side":
			cfg.DriveLeftSide = flagCfg.DriveLeftSide
		case "movement-segments":
			cfg.MovementSegments = flagCfg.MovementSegments
		case "movement-junctions":
			cfg.MovementJunctions = flagCfg.MovementJunctions
		case "movement-quarterly-speeds":
			cfg.MovementQuarterlySpeeds = flagCfg.MovementQuarterlySpeeds
		case "movement-hourly-speeds":
			cfg.MovementHourlySpeeds = flagCfg.MovementHourlySpeeds
		case "stats":
			cfg.Stats = flagCfg.Stats
		}
	})
	return cfg, nil
}
