package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	assert := assert.New(t)

	const eps = 1e-10

	samples := make([]float64, 0, 1000)
	for i := 1000; i > 0; i-- {
		samples = append(samples, float64(i))
	}

	s, err := Summarize(samples)
	assert.NoError(err)
	assert.Equal(1000, s.Count)
	assert.InEpsilon(500.5, s.Mean, eps)
	assert.InEpsilon(1.0, s.Min, eps)
	assert.InEpsilon(1000.0, s.Max, eps)
	assert.InEpsilon(500.0, s.Median, eps)
	assert.InEpsilon(25.0, s.Q025, eps)
	assert.InEpsilon(975.0, s.Q975, eps)

	// Var of 1..n is n(n+1)/12
	assert.InEpsilon(1000.0*1001.0/12.0, s.Variance, eps)
	assert.InEpsilon(math.Sqrt(s.Variance), s.StdDev, eps)

	// Input order untouched
	assert.Equal(1000.0, samples[0])
}

func TestSummarizeEdge(t *testing.T) {
	assert := assert.New(t)

	s, err := Summarize(nil)
	assert.Nil(s)
	assert.Error(err)

	s, err = Summarize([]float64{4.2})
	assert.NoError(err)
	assert.Equal(1, s.Count)
	assert.Equal(4.2, s.Mean)
	assert.Equal(0.0, s.Variance)
	assert.Equal(0.0, s.StdDev)
	assert.Equal(4.2, s.Median)
}
