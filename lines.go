package movement2osm

import (
	"bufio"
	"io"
	"strings"
)

// lineReader splits input into comma separated fields, one line per record.
// Quotes have no special meaning: a stray quote affects its own field only
type lineReader struct {
	reader *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// next returns fields of the next non-blank line. Blank lines are skipped.
// Returns io.EOF when input is over
func (lr *lineReader) next() ([]string, error) {
	for {
		line, err := lr.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == io.EOF && line == "" {
			return nil, io.EOF
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		return strings.Split(line, ","), nil
	}
}
