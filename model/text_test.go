package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextReader(t *testing.T) {
	assert := assert.New(t)

	reader := TextReader{}

	data := []byte(`# a comment
  1.0, 2.5;-3

# another
4e2	5.25
  
-0.5`)

	ds, err := reader.ReadDataset(data)
	assert.NoError(err)
	assert.Equal([]float64{1.0, 2.5, -3.0, 400.0, 5.25, -0.5}, ds.Values)

	ds, err = reader.ReadDataset([]byte("1\r\n2\r\n"))
	assert.NoError(err)
	assert.Equal([]float64{1.0, 2.0}, ds.Values)
}

func TestTextReaderErrors(t *testing.T) {
	assert := assert.New(t)

	reader := TextReader{}

	ds, err := reader.ReadDataset([]byte{})
	assert.Nil(ds)
	assert.Error(err)

	ds, err = reader.ReadDataset([]byte("# only comments\n\n"))
	assert.Nil(ds)
	assert.Error(err)

	ds, err = reader.ReadDataset([]byte("1.0\n2.0 abc\n"))
	assert.Nil(ds)
	assert.Error(err)
	assert.Contains(err.Error(), "Line 2")

	// NaN parses, but the data set check rejects it
	ds, err = NewDatasetFromBuffer(reader, []byte("1.0 NaN"))
	assert.Nil(ds)
	assert.Error(err)
}
