package movement2osm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

const (
	featureCollectionOpening = `{"type":"FeatureCollection","features": [`
	featureCollectionClosing = `]}`
)

// FeatureCollectionWriter writes GeoJSON FeatureCollection one feature at a time.
// Not safe for concurrent use
type FeatureCollectionWriter struct {
	writer   *bufio.Writer
	closer   io.Closer
	written  int
	opened   bool
	finished bool
}

// NewFeatureCollectionWriter wraps given writer
func NewFeatureCollectionWriter(w io.Writer) *FeatureCollectionWriter {
	fw := &FeatureCollectionWriter{
		writer: bufio.NewWriter(w),
	}
	if closer, ok := w.(io.Closer); ok {
		fw.closer = closer
	}
	return fw
}

// CreateFeatureCollectionFile creates (or truncates) file and wraps it
func CreateFeatureCollectionFile(filename string) (*FeatureCollectionWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create output file")
	}
	return NewFeatureCollectionWriter(file), nil
}

// Written returns number of features written
func (fw *FeatureCollectionWriter) Written() int {
	return fw.written
}

func (fw *FeatureCollectionWriter) open() error {
	if fw.opened {
		return nil
	}
	fw.opened = true
	_, err := fw.writer.WriteString(featureCollectionOpening)
	return err
}

// Write appends feature to collection
func (fw *FeatureCollectionWriter) Write(feature *geojson.Feature) error {
	if fw.finished {
		return fmt.Errorf("Feature collection has been finished already")
	}
	b, err := feature.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal feature")
	}
	err = fw.open()
	if err != nil {
		return errors.Wrap(err, "Can't write collection opening")
	}
	if fw.written > 0 {
		err = fw.writer.WriteByte(',')
		if err != nil {
			return errors.Wrap(err, "Can't write features separator")
		}
	}
	_, err = fw.writer.Write(b)
	if err != nil {
		return errors.Wrap(err, "Can't write feature")
	}
	fw.written++
	return nil
}

// Finish writes collection closing and flushes buffered data. Calls after the first one do nothing
func (fw *FeatureCollectionWriter) Finish() error {
	if fw.finished {
		return nil
	}
	err := fw.open()
	if err != nil {
		return errors.Wrap(err, "Can't write collection opening")
	}
	_, err = fw.writer.WriteString(featureCollectionClosing)
	if err != nil {
		return errors.Wrap(err, "Can't write collection closing")
	}
	fw.finished = true
	return fw.Flush()
}

// Flush writes buffered data to underlying writer
func (fw *FeatureCollectionWriter) Flush() error {
	return errors.Wrap(fw.writer.Flush(), "Can't flush features")
}

// Close flushes buffered data and closes underlying writer if it is io.Closer.
// Collection is not finished implicitly: interrupted run leaves document unclosed
func (fw *FeatureCollectionWriter) Close() error {
	err := fw.Flush()
	if fw.closer != nil {
		errClose := fw.closer.Close()
		fw.closer = nil
		if err == nil && errClose != nil {
			err = errors.Wrap(errClose, "Can't close output")
		}
	}
	return err
}
