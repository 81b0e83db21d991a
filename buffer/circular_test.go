package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(c *CircularFloat) []float64 {
	vals := []float64{}
	for iter := c.Values(); iter.Next(); {
		vals = append(vals, iter.Value())
	}
	return vals
}

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(4)
	assert.Equal(4, cf.BufSize)
	assert.Equal(0, cf.Count)
	assert.Equal(0.0, cf.Mean())
	assert.Empty(collect(cf))

	cf.Add(1)
	cf.Add(2)
	cf.Add(3)
	assert.Equal(3, cf.Count)
	assert.Equal([]float64{1, 2, 3}, collect(cf))
	assert.InEpsilon(2.0, cf.Mean(), 1e-12)

	cf.Add(4)
	assert.Equal(4, cf.Count)
	assert.Equal([]float64{1, 2, 3, 4}, collect(cf))
	assert.InEpsilon(2.5, cf.Mean(), 1e-12)

	// 1 2 3 4 add 8 add 8 => 8 8 3 4, oldest first is 3 4 8 8
	cf.Add(8)
	cf.Add(8)
	assert.Equal(4, cf.Count)
	assert.Equal(int64(6), cf.TotalSeen)
	assert.Equal([]float64{3, 4, 8, 8}, collect(cf))
	assert.InEpsilon(5.75, cf.Mean(), 1e-12)
}

func TestCircularFloatTiny(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(0)
	assert.Equal(1, cf.BufSize)

	cf.Add(3)
	cf.Add(7)
	assert.Equal([]float64{7}, collect(cf))
	assert.Equal(7.0, cf.Mean())
}
