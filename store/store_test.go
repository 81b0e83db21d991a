package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	st, err := Open(filepath.Join(t.TempDir(), "samples.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = st.LatestRunID(ctx)
	assert.Error(err)

	run := Run{Dataset: "heights", N: 5, Nu: 3.0, BurnIn: 10, SampleSize: 3, Seed: 0, Source: "mt19937", Workers: 1}
	id1, err := st.SaveRun(ctx, run, []float64{1.0, 1.5, 2.0}, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)

	run.SampleSize = 2
	id2, err := st.SaveRun(ctx, run, []float64{9.0, 8.0}, []float64{0.9, 0.8})
	require.NoError(t, err)
	assert.True(id2 > id1)

	latest, err := st.LatestRunID(ctx)
	assert.NoError(err)
	assert.Equal(id2, latest)

	got, mu, sigma2, err := st.LoadRun(ctx, id1)
	require.NoError(t, err)
	assert.Equal(id1, got.ID)
	assert.Equal("heights", got.Dataset)
	assert.Equal(5, got.N)
	assert.Equal(3.0, got.Nu)
	assert.Equal(10, got.BurnIn)
	assert.Equal(3, got.SampleSize)
	assert.Equal("mt19937", got.Source)
	assert.False(got.CreatedAt.IsZero())
	assert.Equal([]float64{1.0, 1.5, 2.0}, mu)
	assert.Equal([]float64{0.1, 0.2, 0.3}, sigma2)

	_, _, _, err = st.LoadRun(ctx, 999)
	assert.Error(err)
}

func TestStoreErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Open("  ")
	assert.Error(err)

	st, err := Open(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = st.SaveRun(context.Background(), Run{}, []float64{1}, nil)
	assert.Error(err)

	// Empty runs are fine
	id, err := st.SaveRun(context.Background(), Run{Dataset: "none"}, nil, nil)
	assert.NoError(err)
	_, mu, _, err := st.LoadRun(context.Background(), id)
	assert.NoError(err)
	assert.Empty(mu)

	var nilStore *Store
	assert.NoError(nilStore.Close())
}
