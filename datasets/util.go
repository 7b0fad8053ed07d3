package datasets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

// ErrShapeMismatch is returned when a CSV file does not match the feature
// and step counts it is loaded with.
var ErrShapeMismatch = errors.New("csv does not match dataset shape")

const labelColumn = "label"

// columnName is the header of feature f at step t.
func columnName(f, t int) string {
	return "f" + strconv.Itoa(f) + "_t" + strconv.Itoa(t)
}

// header returns the column names for a features x steps dataset.
func header(features, steps int) []string {
	cols := make([]string, 0, features*steps+1)
	for f := range features {
		for t := range steps {
			cols = append(cols, columnName(f, t))
		}
	}
	return append(cols, labelColumn)
}

func formatFloat[T manifold.Float](v T) string {
	return strconv.FormatFloat(float64(v), 'g', -1, manifold.Bits[T]())
}

func parseFloat[T manifold.Float](s string) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	v, err := strconv.ParseFloat(s, manifold.Bits[T]())
	if err != nil {
		return 0, err
	}
	return T(v), nil
}

// parseLabel accepts integer labels and integral floats such as "1.0" or
// "1.000000000000000000e+00".
func parseLabel(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid label %q: %w", s, err)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("label %q is not an integer", s)
	}
	return int32(f), nil
}
