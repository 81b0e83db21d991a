package model

import (
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Reader implementors instantiate a data set from a byte stream
type Reader interface {
	ReadDataset(data []byte) (*Dataset, error)
}

// Dataset is a named, ordered set of real valued observations
type Dataset struct {
	Name   string    // Data set name
	Values []float64 // Observations in file order
}

// NewDatasetFromFile reads and parses the data set at filename. The data set
// is named after the file.
func NewDatasetFromFile(r Reader, filename string) (*Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ data set from %s", filename)
	}

	ds, err := NewDatasetFromBuffer(r, data)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid data set file %s", filename)
	}

	var ext = filepath.Ext(filename)
	ds.Name = filepath.Base(filename[0 : len(filename)-len(ext)])

	return ds, nil
}

// NewDatasetFromBuffer creates a data set from the given pre-read data
func NewDatasetFromBuffer(r Reader, data []byte) (*Dataset, error) {
	ds, err := r.ReadDataset(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE data set")
	}

	err = ds.Check()
	if err != nil {
		return nil, errors.Wrapf(err, "Parsed data set is not valid")
	}

	return ds, nil
}

// Check returns an error if the data set can not be sampled
func (d *Dataset) Check() error {
	if len(d.Values) < 1 {
		return errors.Errorf("Data set %s has no observations", d.Name)
	}

	for i, v := range d.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("Data set %s: observation %d is not finite (%v)", d.Name, i, v)
		}
	}

	return nil
}

// Mean returns the arithmetic mean of the observations
func (d *Dataset) Mean() float64 {
	if len(d.Values) < 1 {
		return math.NaN()
	}

	tot := 0.0
	for _, v := range d.Values {
		tot += v
	}
	return tot / float64(len(d.Values))
}
