package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashingProvider is an offline encoder that hashes character trigrams of
// each word into a fixed number of buckets. Vectors are L2-normalised; blank text
// encodes to the zero vector.
type HashingProvider struct {
	dimension int
}

// NewHashingProvider creates a hashing encoder. A non-positive dimension selects 512.
func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &HashingProvider{dimension: dimension}
}

// Name identifies the provider in embedding cache keys.
func (p *HashingProvider) Name() string { return "hashing" }

// Dimension returns the vector length.
func (p *HashingProvider) Dimension() int { return p.dimension }

// Encode returns the hashed trigram vector of text.
func (p *HashingProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.vector(text), nil
}

// EncodeBatch encodes texts in order. It stops at the first cancelled context check.
func (p *HashingProvider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = p.vector(text)
	}
	return vectors, nil
}

func (p *HashingProvider) vector(text string) []float32 {
	v := make([]float32, p.dimension)
	h := fnv.New32a()

	for _, word := range strings.Fields(strings.ToLower(text)) {
		runes := []rune(" " + word + " ")
		for i := 0; i+3 <= len(runes); i++ {
			h.Reset()
			_, _ = h.Write([]byte(string(runes[i : i+3])))
			v[h.Sum32()%uint32(p.dimension)]++
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
