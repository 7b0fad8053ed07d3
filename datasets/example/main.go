package main

// Example command that generates a small Lorenz dataset, saves it as a
// compressed CSV, loads it back and converts batches into gomlx tensors using
// the helpers provided in the package.
//
// Usage:
//   go run ./datasets/example

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Functional-Data-Clustering/Functional-Data/datasets"
	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

func main() {
	const (
		samples  = 24
		features = 3
		steps    = 50
	)
	gen, err := manifold.New[float32](samples, features, steps, manifold.WithClusters(3), manifold.WithSeed(0))
	if err != nil {
		log.Fatalf("failed to create generator: %v", err)
	}
	ds, err := gen.GenerateLorenz()
	if err != nil {
		log.Fatalf("failed to generate lorenz dataset: %v", err)
	}

	dir, err := os.MkdirTemp("", "manifold-example")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "lorenz.csv.zst")
	if err := datasets.SaveDataset(ds, path); err != nil {
		log.Fatalf("failed to save dataset: %v", err)
	}
	fmt.Printf("Saved %d trajectories to %s\n", ds.Samples, path)

	// The shape is not stored in the file, so pass it back in.
	loaded, err := datasets.LoadDataset[float32](path, features, steps)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	fmt.Printf("Loaded dataset with shape (%d, %d, %d) and labels %v\n",
		loaded.Samples, loaded.Features, loaded.Steps, loaded.Labels())

	td, err := datasets.NewTrajectoryDataset(loaded, 8)
	if err != nil {
		log.Fatalf("failed to wrap dataset: %v", err)
	}
	td.Shuffle(1)

	for batch := 0; ; batch++ {
		_, inputs, labels, err := td.Yield()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to yield batch: %v", err)
		}
		fmt.Printf("Batch %d: input=%T label=%T\n", batch, inputs[0], labels[0])
	}

	fmt.Println("\nExample completed successfully!")
}
