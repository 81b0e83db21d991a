package model

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TextReader reads plain text observation files: numbers separated by white
// space, commas or semicolons. Blank lines and lines starting with '#' are
// ignored.
type TextReader struct {
}

// textPreprocess drops comments and blank lines and returns the remaining
// fields along with the (1-based) line each field came from
func textPreprocess(data []byte) ([]string, []int) {
	lines := strings.Split(string(data), "\n")

	var fields []string
	var lineNums []int
	for i, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == '#' {
			continue
		}

		split := strings.FieldsFunc(ln, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\r'
		})
		for _, f := range split {
			fields = append(fields, f)
			lineNums = append(lineNums, i+1)
		}
	}

	return fields, lineNums
}

// ReadDataset implements the model.Reader interface
func (r TextReader) ReadDataset(data []byte) (*Dataset, error) {
	fields, lineNums := textPreprocess(data)
	if len(fields) < 1 {
		return nil, errors.Errorf("No observations found")
	}

	ds := &Dataset{
		Values: make([]float64, len(fields)),
	}

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Line %d: invalid observation %q", lineNums[i], f)
		}
		ds.Values[i] = v
	}

	return ds, nil
}
