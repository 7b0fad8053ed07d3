package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Functional-Data-Clustering/Functional-Data/datasets"
	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

func TestParseFamilies(t *testing.T) {
	all, err := parseFamilies("all")
	require.NoError(t, err)
	assert.Equal(t, manifold.Families(), all)

	some, err := parseFamilies("lorenz,swiss-roll")
	require.NoError(t, err)
	assert.Equal(t, []manifold.Family{manifold.Lorenz, manifold.SwissRoll}, some)

	_, err = parseFamilies("lorenz,torus")
	assert.ErrorIs(t, err, manifold.ErrUnknownFamily)
}

func TestRunAllMatchesSequentialGeneration(t *testing.T) {
	tmp := t.TempDir()
	cfg := settings{
		noise:      0.02,
		omegaDelta: 2,
		seed:       0,
		seeded:     true,
		outDir:     tmp,
		save:       true,
		ext:        ".csv.gz",
		plot:       true,
		maxTraj:    20,
		logger:     slog.New(slog.DiscardHandler),
	}
	var jobs []job
	for _, f := range manifold.Families() {
		jobs = append(jobs, job{f, 12, 2, 10, 3})
	}
	require.NoError(t, runAll[float32](context.Background(), jobs, cfg))

	for _, j := range jobs {
		_, err := os.Stat(filepath.Join(tmp, j.family.String()+".png"))
		require.NoError(t, err)

		got, err := datasets.LoadDataset[float32](filepath.Join(tmp, j.family.String()+".csv.gz"), 2, 10)
		require.NoError(t, err)

		g, err := manifold.New[float32](12, 2, 10, manifold.WithClusters(3), manifold.WithBaseNoise(0.02), manifold.WithSeed(0))
		require.NoError(t, err)
		want, err := g.Generate(j.family)
		require.NoError(t, err)
		assert.Equal(t, want.X, got.X, "family %s", j.family)
		assert.Equal(t, want.Y, got.Y, "family %s", j.family)
	}
}

func TestRunRejectsInvalidJob(t *testing.T) {
	cfg := settings{omegaDelta: 2, logger: slog.New(slog.DiscardHandler)}
	err := run[float64](job{manifold.Lorenz, 1, 3, 5, 2}, cfg)
	assert.ErrorIs(t, err, manifold.ErrInvalidConfig)
}
