package embed

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// HashModel is an offline encoder that feature-hashes word unigrams and
// bigrams into a fixed number of buckets and L2-normalizes the result.
// It needs no weights, so it is used for local runs and tests.
type HashModel struct {
	dims int
}

// NewHashModel creates a HashModel producing vectors of length dims.
func NewHashModel(dims int) *HashModel {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashModel{dims: dims}
}

func (m *HashModel) Name() string    { return fmt.Sprintf("hash-%d", m.dims) }
func (m *HashModel) Dimensions() int { return m.dims }

// Encode is deterministic: identical text always yields identical vectors.
func (m *HashModel) Encode(_ context.Context, text string) ([]float32, error) {
	acc := make([]float64, m.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		m.add(acc, tok, 1)
		if i > 0 {
			m.add(acc, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, m.dims)
	if norm == 0 {
		return out, nil
	}
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (m *HashModel) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(m.dims)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
