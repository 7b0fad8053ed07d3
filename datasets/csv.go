package datasets

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

// SaveDataset writes ds to path as CSV. X is flattened from
// [sample, feature, step] to [sample, feature*step] and the label is appended
// as the last column. Floats use the shortest representation that parses
// back to the same value of the dataset's precision.
//
// The file is written to a temporary sibling first and renamed into place.
// Missing parent directories are created. The compression is chosen from the
// file extension (see CompressionFor).
func SaveDataset[T manifold.Float](ds *manifold.Dataset[T], path string) error {
	if path == "" {
		return fmt.Errorf("empty dataset path")
	}
	if ds == nil {
		return fmt.Errorf("dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	enc, err := CompressionFor(path).newWriter(tmpFile)
	if err != nil {
		return fmt.Errorf("open %s encoder: %w", CompressionFor(path), err)
	}
	if err := WriteCSV(enc, ds); err != nil {
		enc.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush %s encoder: %w", CompressionFor(path), err)
	}
	if err := tmpFile.Sync(); err != nil {
		log.Printf("warning: sync temp dataset file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp dataset file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp dataset to target: %w", err)
	}
	return nil
}

// WriteCSV writes the header and one row per sample of ds to w.
func WriteCSV[T manifold.Float](w io.Writer, ds *manifold.Dataset[T]) error {
	if ds == nil {
		return fmt.Errorf("dataset is nil")
	}
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(header(ds.Features, ds.Steps)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	block := ds.Features * ds.Steps
	row := make([]string, block+1)
	for i := range ds.Samples {
		// X is already stored [sample][feature][step], so a sample's row is
		// its contiguous block.
		for j, v := range ds.X[i*block : (i+1)*block] {
			row[j] = formatFloat(v)
		}
		row[block] = fmt.Sprint(ds.Y[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadDataset reads a CSV written by SaveDataset. features and steps must be
// the values the dataset was saved with.
func LoadDataset[T manifold.Float](path string, features, steps int) (*manifold.Dataset[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer file.Close()

	dec, err := CompressionFor(path).newReader(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("open %s decoder for %s: %w", CompressionFor(path), path, err)
	}
	defer dec.Close()

	ds, err := ReadCSV[T](dec, features, steps)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses a dataset from r. The header must name exactly the columns
// SaveDataset writes for features x steps.
func ReadCSV[T manifold.Float](r io.Reader, features, steps int) (*manifold.Dataset[T], error) {
	if features < 1 || steps < 1 {
		return nil, fmt.Errorf("%w: features %d and steps %d must be >= 1", ErrShapeMismatch, features, steps)
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	got, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrShapeMismatch)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	want := header(features, steps)
	if len(got) != len(want) {
		return nil, fmt.Errorf("%w: %d columns, expected %d for %d features x %d steps",
			ErrShapeMismatch, len(got), len(want), features, steps)
	}
	for j := range want {
		if got[j] != want[j] {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrShapeMismatch, j, got[j], want[j])
		}
	}

	block := features * steps
	ds := manifold.NewDataset[T](0, features, steps)
	for rowIdx := 0; ; rowIdx++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowIdx, err)
		}
		for j := range block {
			v, err := parseFloat[T](record[j])
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s in row %d: %w", want[j], rowIdx, err)
			}
			ds.X = append(ds.X, v)
		}
		label, err := parseLabel(record[block])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		ds.Y = append(ds.Y, label)
		ds.Samples++
	}
	return ds, nil
}
