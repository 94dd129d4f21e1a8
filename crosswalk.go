package movement2osm

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Crosswalk maps external (mobility dataset) identifiers to road network identifiers.
// It is filled once and read-only afterwards
type Crosswalk struct {
	name    string
	mapping map[string]string
	dropped int
}

// Lookup returns network identifier for external one
func (cw *Crosswalk) Lookup(externalID string) (string, bool) {
	networkID, ok := cw.mapping[externalID]
	return networkID, ok
}

// Len returns number of admitted pairs
func (cw *Crosswalk) Len() int {
	return len(cw.mapping)
}

// Dropped returns number of rows whose network identifier is unknown
func (cw *Crosswalk) Dropped() int {
	return cw.dropped
}

// BuildCrosswalk reads header and then `external_id,network_id,...` lines.
// Pair is admitted only if `known` returns true for network identifier
func BuildCrosswalk(name string, r io.Reader, known func(networkID string) bool) (*Crosswalk, error) {
	reader := newLineReader(r)
	cw := &Crosswalk{
		name:    name,
		mapping: make(map[string]string),
	}
	header := true
	for {
		record, err := reader.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read %s crosswalk", name)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 || !known(record[1]) {
			cw.dropped++
			continue
		}
		cw.mapping[record[0]] = record[1]
	}
	return cw, nil
}

// BuildCrosswalkFromFile is BuildCrosswalk over file on disk
func BuildCrosswalkFromFile(name, filename string, known func(networkID string) bool, logger *zap.Logger) (*Crosswalk, error) {
	logger.Info("Loading crosswalk", zap.String("crosswalk", name), zap.String("filename", filename))
	st := time.Now()
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s crosswalk file", name)
	}
	defer file.Close()
	cw, err := BuildCrosswalk(name, file, known)
	if err != nil {
		return nil, err
	}
	logger.Info("Done loading crosswalk", zap.String("crosswalk", name), zap.Duration("elapsed", time.Since(st)), zap.Int("entries", cw.Len()), zap.Int("dropped", cw.Dropped()))
	return cw, nil
}
