package movement2osm

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/LdDl/movement2osm/osmindex"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTileSource names the tile set only. Actual run needs path to OSM extract (*.osm, *.xml, *.pbf)
	DefaultTileSource    = "osm/planet-181224"
	DefaultTileHierarchy = 6
	// DefaultBufferMeters extends boundary so ways crossing its edge are indexed as a whole
	DefaultBufferMeters = 0.0
)

// Config is the run configuration
type Config struct {
	Boundary                string  `yaml:"boundary" flag:"boundary" validate:"required"`
	Out                     string  `yaml:"out" flag:"out"`
	TileSource              string  `yaml:"tile_source" flag:"tile-source" validate:"required,osm_extract"`
	TileHierarchy           int     `yaml:"tile_hierarchy" flag:"tile-hierarchy" validate:"gte=0,lte=8"`
	BufferMeters            float64 `yaml:"buffer_meters" flag:"buffer" validate:"gte=0"`
	Routing                 bool    `yaml:"routing" flag:"routing"`
	FilterDay               int     `yaml:"filter_day" flag:"filter-day"`
	FilterHour              int     `yaml:"filter_hour" flag:"filter-hour"`
	DriveLeftSide           bool    `yaml:"drive_left_side" flag:"drive-left-side"`
	MovementSegments        string  `yaml:"movement_segments" flag:"movement-segments" validate:"required"`
	MovementJunctions       string  `yaml:"movement_junctions" flag:"movement-junctions" validate:"required"`
	MovementQuarterlySpeeds string  `yaml:"movement_quarterly_speeds" flag:"movement-quarterly-speeds" validate:"required_without=MovementHourlySpeeds,excluded_with=MovementHourlySpeeds"`
	MovementHourlySpeeds    string  `yaml:"movement_hourly_speeds" flag:"movement-hourly-speeds" validate:"required_without=MovementQuarterlySpeeds,excluded_with=MovementQuarterlySpeeds"`
	Stats                   bool    `yaml:"stats" flag:"stats"`
}

// DefaultConfig returns configuration with defaults applied
func DefaultConfig() *Config {
	return &Config{
		TileSource:    DefaultTileSource,
		TileHierarchy: DefaultTileHierarchy,
		BufferMeters:  DefaultBufferMeters,
		FilterDay:     -1,
		FilterHour:    -1,
	}
}

// LoadConfig reads YAML file on top of defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config file")
	}
	cfg := DefaultConfig()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse config file '%s'", filename)
	}
	return cfg, nil
}

// ConfigError describes invalid user configuration
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Invalid configuration: %s", strings.Join(e.Problems, "; "))
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("flag")
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("osm_extract", func(fl validator.FieldLevel) bool {
		return osmindex.SupportedSource(fl.Field().String())
	})
	return v
}

// Validate checks configuration. Returns *ConfigError
func (cfg *Config) Validate() error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ConfigError{Problems: []string{err.Error()}}
	}
	problems := make([]string, 0, len(validationErrors))
	seen := make(map[string]struct{}, len(validationErrors))
	for _, fieldErr := range validationErrors {
		problem := describeFieldError(fieldErr)
		if _, ok := seen[problem]; ok {
			continue
		}
		seen[problem] = struct{}{}
		problems = append(problems, problem)
	}
	return &ConfigError{Problems: problems}
}

func describeFieldError(fieldErr validator.FieldError) string {
	name := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		if name == "boundary" {
			return "boundary polygon file is required"
		}
		return fmt.Sprintf("--%s is required", name)
	case "required_without", "excluded_with":
		return "exactly one of --movement-quarterly-speeds or --movement-hourly-speeds is required"
	case "gte":
		return fmt.Sprintf("--%s must be >= %s", name, fieldErr.Param())
	case "lte":
		return fmt.Sprintf("--%s must be <= %s", name, fieldErr.Param())
	case "osm_extract":
		return fmt.Sprintf("--%s must be path to OSM extract (*.osm, *.xml, *.pbf), got '%v'", name, fieldErr.Value())
	default:
		return fmt.Sprintf("--%s is invalid (%s)", name, fieldErr.Tag())
	}
}

// MeasurementKind returns kind of measurement file configured
func (cfg *Config) MeasurementKind() MeasurementKind {
	if cfg.MovementQuarterlySpeeds != "" {
		return MEASUREMENT_AGGREGATED
	}
	return MEASUREMENT_HOURLY
}

// MeasurementFile returns path of measurement file configured
func (cfg *Config) MeasurementFile() string {
	if cfg.MovementQuarterlySpeeds != "" {
		return cfg.MovementQuarterlySpeeds
	}
	return cfg.MovementHourlySpeeds
}

// OutputFile returns explicit output path or the one derived from measurement file
func (cfg *Config) OutputFile() string {
	if cfg.Out != "" {
		return cfg.Out
	}
	return cfg.MeasurementFile() + ".out.geojson"
}
