package movement2osm

import (
	"io"

	"github.com/pkg/errors"
)

// MeasurementKind is the shape of measurement file
type MeasurementKind uint16

const (
	MEASUREMENT_AGGREGATED = MeasurementKind(iota + 1)
	MEASUREMENT_HOURLY
)

func (iotaIdx MeasurementKind) String() string {
	return [...]string{"aggregated", "hourly"}[iotaIdx-1]
}

// Column positions shared by both measurement kinds
const (
	colYear = iota
	colQuarter
	colHour
	colSegmentID
	colFromJunctionID
	colToJunctionID
	colMean
	colStdDev
	colP50
	colP85
)

// MeasurementRecord is a single row of measurement file. Numeric values are kept as they are in the file
type MeasurementRecord struct {
	Year           string
	Quarter        string
	Hour           string
	SegmentID      string
	FromJunctionID string
	ToJunctionID   string
	Mean           string
	StdDev         string
	// P50 and P85 are filled for MEASUREMENT_AGGREGATED only
	P50 string
	P85 string
}

// MeasurementReader streams measurement file row by row
type MeasurementReader struct {
	kind   MeasurementKind
	reader *lineReader
	header bool
	lines  int
}

// NewMeasurementReader prepares reader for given measurement kind. First line is treated as header
func NewMeasurementReader(r io.Reader, kind MeasurementKind) *MeasurementReader {
	return &MeasurementReader{
		kind:   kind,
		reader: newLineReader(r),
		header: true,
	}
}

// Kind returns measurement kind
func (mr *MeasurementReader) Kind() MeasurementKind {
	return mr.kind
}

// Lines returns number of rows returned so far (header and blank lines excluded)
func (mr *MeasurementReader) Lines() int {
	return mr.lines
}

// Next returns next row. Returns io.EOF when file is over.
// Blank lines are skipped and not counted
func (mr *MeasurementReader) Next() (MeasurementRecord, error) {
	for {
		row, err := mr.reader.next()
		if err == io.EOF {
			return MeasurementRecord{}, io.EOF
		}
		if err != nil {
			return MeasurementRecord{}, errors.Wrap(err, "Can't read measurement file")
		}
		if mr.header {
			mr.header = false
			continue
		}
		mr.lines++
		return mr.parse(row), nil
	}
}

func (mr *MeasurementReader) parse(row []string) MeasurementRecord {
	record := MeasurementRecord{
		Year:           field(row, colYear),
		Quarter:        field(row, colQuarter),
		Hour:           field(row, colHour),
		SegmentID:      field(row, colSegmentID),
		FromJunctionID: field(row, colFromJunctionID),
		ToJunctionID:   field(row, colToJunctionID),
		Mean:           field(row, colMean),
		StdDev:         field(row, colStdDev),
	}
	if mr.kind == MEASUREMENT_AGGREGATED {
		record.P50 = field(row, colP50)
		record.P85 = field(row, colP85)
	}
	return record
}

func field(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
