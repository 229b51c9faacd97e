package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrMatrixShape is returned when rows of different lengths are used to build
// a Matrix or when binary data does not describe a square matrix.
var ErrMatrixShape = errors.New("matrix must be square")

// Matrix is a dense n×n distance matrix stored row-major in a flat buffer.
//
// Matrix values are read-only once returned to callers: the only writers are
// the constructors in this package. +Inf marks unreachable pairs.
type Matrix struct {
	n    int
	data []float64
}

// newMatrix returns an n×n matrix with a zero diagonal and +Inf elsewhere.
func newMatrix(n int) *Matrix {
	m := &Matrix{n: n, data: make([]float64, n*n)}
	inf := math.Inf(1)
	for i := range m.data {
		m.data[i] = inf
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 0
	}
	return m
}

// MatrixFromRows builds a Matrix from a square slice of rows.
// The rows are copied. It is mainly used to feed precomputed distances to the
// solvers.
func MatrixFromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrMatrixShape)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// Size returns the matrix order n.
func (m *Matrix) Size() int { return m.n }

// At returns the distance from i to j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Reachable reports whether j can be reached from i.
func (m *Matrix) Reachable(i, j int) bool { return !math.IsInf(m.At(i, j), 1) }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return slices.Clone(m.data[i*m.n : (i+1)*m.n])
}

// Rows returns the matrix as a freshly allocated slice of rows.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

// Equal reports whether both matrices have the same order and identical entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.n == o.n && slices.Equal(m.data, o.data)
}

// Components groups vertices into connected components using reachability.
// Components are ordered by their smallest vertex, and each component lists
// its vertices in ascending order.
func (m *Matrix) Components() [][]int {
	seen := make([]bool, m.n)
	var comps [][]int
	for i := 0; i < m.n; i++ {
		if seen[i] {
			continue
		}
		var comp []int
		for j := i; j < m.n; j++ {
			if !seen[j] && m.Reachable(i, j) {
				seen[j] = true
				comp = append(comp, j)
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// MarshalBinary encodes the matrix as a little-endian uint32 order followed by
// n*n IEEE-754 float64 values. +Inf is preserved exactly.
func (m *Matrix) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4+8*len(m.data))
	binary.LittleEndian.PutUint32(buf, uint32(m.n))
	for i, v := range m.data {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (m *Matrix) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("decode matrix: %d bytes: %w", len(data), ErrMatrixShape)
	}
	n := int(binary.LittleEndian.Uint32(data))
	if len(data) != 4+8*n*n {
		return fmt.Errorf("decode matrix: order %d needs %d bytes, got %d: %w", n, 4+8*n*n, len(data), ErrMatrixShape)
	}
	m.n = n
	m.data = make([]float64, n*n)
	for i := range m.data {
		m.data[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	return nil
}
