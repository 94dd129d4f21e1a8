package movement2osm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ProgressFunc is called once per processed measurement line
type ProgressFunc func(processed int)

// Counters are the final statistics of a run
type Counters struct {
	Matched          int
	Unmatched        int
	Missing          int
	DroppedSegments  int
	DroppedJunctions int
}

// Total returns number of processed measurement records
func (c *Counters) Total() int {
	return c.Matched + c.Unmatched + c.Missing
}

func (c *Counters) String() string {
	return fmt.Sprintf("matched: %d | unmatched: %d | missing: %d", c.Matched, c.Unmatched, c.Missing)
}

func (c *Counters) count(outcome Outcome) {
	switch outcome {
	case OUTCOME_MATCHED:
		c.Matched++
	case OUTCOME_UNMATCHED:
		c.Unmatched++
	case OUTCOME_MISSING:
		c.Missing++
	}
}

// Pipeline wires crosswalks, measurement stream, geometry resolution and output together
type Pipeline struct {
	cfg        *Config
	buildIndex IndexBuilder
	logger     *zap.Logger
	progress   ProgressFunc
}

func WithLogger(logger *zap.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithProgress(progress ProgressFunc) func(*Pipeline) {
	return func(p *Pipeline) {
		p.progress = progress
	}
}

func NewPipeline(cfg *Config, buildIndex IndexBuilder, options ...func(*Pipeline)) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		buildIndex: buildIndex,
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Run executes the whole join. Configuration is validated before any file is touched: *ConfigError is returned in that case
func (p *Pipeline) Run(ctx context.Context) (*Counters, error) {
	cfg := p.cfg
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if cfg.FilterDay >= 0 || cfg.FilterHour >= 0 || cfg.Stats {
		p.logger.Debug("Reserved options are not applied", zap.Int("filter_day", cfg.FilterDay), zap.Int("filter_hour", cfg.FilterHour), zap.Bool("stats", cfg.Stats))
	}

	index, err := p.buildIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	segments, err := BuildCrosswalkFromFile("segments", cfg.MovementSegments, index.ContainsWay, p.logger)
	if err != nil {
		return nil, err
	}
	junctions, err := BuildCrosswalkFromFile("junctions", cfg.MovementJunctions, index.ContainsNode, p.logger)
	if err != nil {
		return nil, err
	}

	kind := cfg.MeasurementKind()
	measurementFile := cfg.MeasurementFile()
	input, err := os.Open(measurementFile)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open measurement file")
	}
	defer input.Close()

	outputFile := cfg.OutputFile()
	writer, err := CreateFeatureCollectionFile(outputFile)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	p.logger.Info("Joining measurements", zap.Stringer("kind", kind), zap.String("input", measurementFile), zap.String("output", outputFile))
	st := time.Now()
	resolver := NewResolver(segments, junctions, index, kind, WithDriveLeftSide(cfg.DriveLeftSide))
	counters, err := Join(ctx, NewMeasurementReader(input, kind), resolver, writer, p.progress)
	if err != nil {
		return nil, err
	}
	err = writer.Finish()
	if err != nil {
		return nil, err
	}
	err = writer.Close()
	if err != nil {
		return nil, err
	}
	counters.DroppedSegments = segments.Dropped()
	counters.DroppedJunctions = junctions.Dropped()
	p.logger.Info("Done joining measurements",
		zap.Duration("elapsed", time.Since(st)),
		zap.Int("matched", counters.Matched),
		zap.Int("unmatched", counters.Unmatched),
		zap.Int("missing", counters.Missing),
		zap.Int("dropped_segments", counters.DroppedSegments),
		zap.Int("dropped_junctions", counters.DroppedJunctions),
	)
	return counters, nil
}

// Join resolves records one by one in input order and writes matched ones. Collection is not finished here
func Join(ctx context.Context, reader *MeasurementReader, resolver *Resolver, writer *FeatureCollectionWriter, progress ProgressFunc) (*Counters, error) {
	counters := &Counters{}
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		outcome, feature, err := resolver.Resolve(ctx, record)
		if err != nil {
			return nil, err
		}
		counters.count(outcome)
		if outcome == OUTCOME_MATCHED {
			err = writer.Write(feature)
			if err != nil {
				return nil, err
			}
		}
		if progress != nil {
			progress(reader.Lines())
		}
	}
	return counters, nil
}
