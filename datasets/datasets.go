package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package moves generated manifold datasets in and out of the process.
//
// Persistence
//   - SaveDataset / LoadDataset write and read the flat CSV layout: one row
//     per sample, columns f{feature}_t{step} in feature-major then step-minor
//     order, and a trailing label column. The first line is the header.
//   - The feature and step counts are not recoverable from the file alone, so
//     LoadDataset needs them from the caller.
//   - Paths ending in .gz, .zst or .lz4 are compressed transparently.
//
// Training-loop adapter
//   - TrajectoryDataset presents a manifold.Dataset as examples suitable for
//     model training: inputs are one trajectory laid out [time][channel],
//     labels are the cluster id.
//   - Batches are returned as contiguous float32 buffers with shape metadata
//     (TrajectoryBatchFlat) and convert to gomlx tensors with ToGomlxTensors.

// Dataset is the example-oriented view used by training code. Yield matches
// gomlx's train.Dataset so a Dataset can feed a gomlx training loop.
type Dataset interface {
	Len() int
	Example(i int) (inputs []float32, labels []float32, err error)
	Batch(indices []int) (inputs [][]float32, labels [][]float32, err error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}
