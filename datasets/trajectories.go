package datasets

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

// TrajectoryDataset presents an in-memory manifold dataset as training
// examples. Example i is sample i laid out [time][channel] as float32 (the
// layout sequence models consume) and its label is the cluster id.
type TrajectoryDataset[T manifold.Float] struct {
	// BatchSize for yielding batches
	BatchSize int

	data *manifold.Dataset[T]

	// order is the iteration order used by Yield; Shuffle permutes it.
	order []int
	next  int

	rand *rand.Rand
}

var _ Dataset = (*TrajectoryDataset[float32])(nil)

// NewTrajectoryDataset wraps ds. batchSize defaults to 32 when < 1.
func NewTrajectoryDataset[T manifold.Float](ds *manifold.Dataset[T], batchSize int) (*TrajectoryDataset[T], error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if batchSize < 1 {
		batchSize = 32
	}
	order := make([]int, ds.Samples)
	for i := range order {
		order[i] = i
	}
	return &TrajectoryDataset[T]{
		BatchSize: batchSize,
		data:      ds,
		order:     order,
		rand:      rand.New(rand.NewSource(0)),
	}, nil
}

// Len returns the number of trajectories.
func (d *TrajectoryDataset[T]) Len() int {
	return d.data.Samples
}

// Example returns trajectory idx flattened [time][channel] and its label.
func (d *TrajectoryDataset[T]) Example(idx int) (inputs []float32, labels []float32, err error) {
	if idx < 0 || idx >= d.data.Samples {
		return nil, nil, fmt.Errorf("index %d out of range [0, %d)", idx, d.data.Samples)
	}
	steps, channels := d.data.Steps, d.data.Features
	inputs = make([]float32, steps*channels)
	for f := range channels {
		for t, v := range d.data.Series(idx, f) {
			inputs[t*channels+f] = float32(v)
		}
	}
	return inputs, []float32{float32(d.data.Y[idx])}, nil
}

// Batch reads multiple examples by index.
func (d *TrajectoryDataset[T]) Batch(indices []int) ([][]float32, [][]float32, error) {
	inputs := make([][]float32, len(indices))
	labels := make([][]float32, len(indices))
	for i, idx := range indices {
		in, lab, err := d.Example(idx)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = in
		labels[i] = lab
	}
	return inputs, labels, nil
}

// Shuffle permutes the order in which Yield visits the trajectories and
// restarts the epoch.
func (d *TrajectoryDataset[T]) Shuffle(seed int64) {
	d.rand.Seed(seed)
	d.rand.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	d.next = 0
}

// Name returns the name of the dataset
func (d *TrajectoryDataset[T]) Name() string {
	return "TrajectoryDataset"
}

// Yield returns the next batch as gomlx tensors: inputs shaped
// [batch, time, channels] and int32 labels shaped [batch]. The last batch of
// an epoch may be short. io.EOF marks the end of the epoch; call Reset to
// start over.
func (d *TrajectoryDataset[T]) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.next >= len(d.order) {
		return nil, nil, nil, io.EOF
	}
	end := min(d.next+d.BatchSize, len(d.order))
	indices := d.order[d.next:end]
	d.next = end

	in, la, err := d.Batch(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	flat, err := MakeTrajectoryBatchFlat(in, la, d.data.Steps, d.data.Features)
	if err != nil {
		return nil, nil, nil, err
	}
	inT, laT := flat.ToGomlxTensors()
	return nil, []*tensors.Tensor{inT}, []*tensors.Tensor{laT}, nil
}

// Reset restarts the epoch without changing the order.
func (d *TrajectoryDataset[T]) Reset() {
	d.next = 0
}

// TrajectoryBatchFlat stores a batch of equal-length trajectories in one
// contiguous buffer.
type TrajectoryBatchFlat struct {
	Buf      []float32
	Labels   []int32
	Batch    int
	Time     int
	Channels int
}

// MakeTrajectoryBatchFlat packs examples returned by Batch.
func MakeTrajectoryBatchFlat(inputs, labels [][]float32, timeSteps, channels int) (*TrajectoryBatchFlat, error) {
	if len(inputs) != len(labels) {
		return nil, fmt.Errorf("inputs and labels batch sizes don't match: %d != %d", len(inputs), len(labels))
	}
	width := timeSteps * channels
	flat := make([]float32, len(inputs)*width)
	labs := make([]int32, len(labels))
	for i, buf := range inputs {
		if len(buf) != width {
			return nil, fmt.Errorf("buffer %d has wrong size: expected %d, got %d", i, width, len(buf))
		}
		if len(labels[i]) != 1 {
			return nil, fmt.Errorf("label %d has %d values, expected 1", i, len(labels[i]))
		}
		copy(flat[i*width:], buf)
		labs[i] = int32(labels[i][0])
	}
	return &TrajectoryBatchFlat{
		Buf:      flat,
		Labels:   labs,
		Batch:    len(inputs),
		Time:     timeSteps,
		Channels: channels,
	}, nil
}

// At returns channel c of example b at step t.
func (b *TrajectoryBatchFlat) At(batch, t, c int) float32 {
	return b.Buf[(batch*b.Time+t)*b.Channels+c]
}

// ToGomlxTensors converts the batch to gomlx tensors.
func (b *TrajectoryBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor) {
	data := make([][][]float32, b.Batch)
	idx := 0
	for i := range b.Batch {
		data[i] = make([][]float32, b.Time)
		for j := range b.Time {
			data[i][j] = b.Buf[idx : idx+b.Channels]
			idx += b.Channels
		}
	}
	return tensors.FromAnyValue(data), tensors.FromAnyValue(b.Labels)
}

// DatasetTensors converts a whole dataset to gomlx tensors: X shaped
// [samples, features, steps] and y shaped [samples].
func DatasetTensors[T manifold.Float](ds *manifold.Dataset[T]) (x, y *tensors.Tensor, err error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return nil, nil, err
	}
	if ds.Samples == 0 {
		return nil, nil, fmt.Errorf("dataset is empty")
	}
	data := make([][][]T, ds.Samples)
	for i := range data {
		data[i] = ds.Trajectory(i)
	}
	return tensors.FromAnyValue(data), tensors.FromAnyValue(append([]int32(nil), ds.Y...)), nil
}
