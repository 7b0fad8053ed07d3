package manifold

import (
	"fmt"
	"slices"
)

// Dataset is a labeled set of trajectories.
//
// X is stored flat in row-major [sample][feature][step] order, so the value of
// feature f of sample i at step t lives at X[(i*Features+f)*Steps+t].
// Y holds one cluster label per sample.
type Dataset[T Float] struct {
	X []T
	Y []int32

	Samples  int
	Features int
	Steps    int
}

// NewDataset allocates a zeroed dataset of the given shape.
func NewDataset[T Float](samples, features, steps int) *Dataset[T] {
	return &Dataset[T]{
		X:        make([]T, samples*features*steps),
		Y:        make([]int32, samples),
		Samples:  samples,
		Features: features,
		Steps:    steps,
	}
}

// Shape returns (samples, features, steps).
func (d *Dataset[T]) Shape() (int, int, int) {
	return d.Samples, d.Features, d.Steps
}

func (d *Dataset[T]) index(i, f, t int) int {
	return (i*d.Features+f)*d.Steps + t
}

// At returns X[i, f, t].
func (d *Dataset[T]) At(i, f, t int) T {
	return d.X[d.index(i, f, t)]
}

// Set stores v at X[i, f, t].
func (d *Dataset[T]) Set(i, f, t int, v T) {
	d.X[d.index(i, f, t)] = v
}

// Series returns the time series of feature f of sample i. The returned slice
// aliases X.
func (d *Dataset[T]) Series(i, f int) []T {
	start := d.index(i, f, 0)
	return d.X[start : start+d.Steps]
}

// Point returns a copy of the feature vector X[i, :, t].
func (d *Dataset[T]) Point(i, t int) []T {
	p := make([]T, d.Features)
	for f := range p {
		p[f] = d.At(i, f, t)
	}
	return p
}

// Trajectory returns sample i as a freshly allocated [feature][step] matrix.
func (d *Dataset[T]) Trajectory(i int) [][]T {
	out := make([][]T, d.Features)
	for f := range out {
		out[f] = append([]T(nil), d.Series(i, f)...)
	}
	return out
}

// Validate checks that the shape has at least one feature and one step and
// that the buffers agree with it.
func (d *Dataset[T]) Validate() error {
	if d.Samples < 0 || d.Features < 1 || d.Steps < 1 {
		return fmt.Errorf("invalid dataset shape (%d, %d, %d): samples must be >= 0, features and steps >= 1",
			d.Samples, d.Features, d.Steps)
	}
	if want := d.Samples * d.Features * d.Steps; len(d.X) != want {
		return fmt.Errorf("X has %d values, shape (%d, %d, %d) needs %d",
			len(d.X), d.Samples, d.Features, d.Steps, want)
	}
	if len(d.Y) != d.Samples {
		return fmt.Errorf("y has %d labels, expected %d", len(d.Y), d.Samples)
	}
	return nil
}

// Select returns a new dataset holding the given samples in the given order.
func (d *Dataset[T]) Select(indices []int) (*Dataset[T], error) {
	out := NewDataset[T](len(indices), d.Features, d.Steps)
	block := d.Features * d.Steps
	for pos, idx := range indices {
		if idx < 0 || idx >= d.Samples {
			return nil, fmt.Errorf("sample index %d out of range [0, %d)", idx, d.Samples)
		}
		copy(out.X[pos*block:(pos+1)*block], d.X[idx*block:(idx+1)*block])
		out.Y[pos] = d.Y[idx]
	}
	return out, nil
}

// Clone returns a deep copy.
func (d *Dataset[T]) Clone() *Dataset[T] {
	return &Dataset[T]{
		X:        append([]T(nil), d.X...),
		Y:        append([]int32(nil), d.Y...),
		Samples:  d.Samples,
		Features: d.Features,
		Steps:    d.Steps,
	}
}

// Labels returns the distinct labels in ascending order.
func (d *Dataset[T]) Labels() []int32 {
	seen := make(map[int32]bool)
	var out []int32
	for _, y := range d.Y {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	slices.Sort(out)
	return out
}
