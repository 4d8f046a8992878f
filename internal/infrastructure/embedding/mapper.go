package embedding

import (
	"fmt"

	"github.com/shelfmatch/backend/internal/domain"
)

type embedRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// toVectors checks that the response holds one vector of the expected size per input.
func toVectors(resp embedResponse, want, dimension int) ([][]float32, error) {
	if len(resp.Embeddings) != want {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrEmbeddingAPIFailure, len(resp.Embeddings), want)
	}
	for i, v := range resp.Embeddings {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: embedding %d has %d values, want %d", domain.ErrDimensionMismatch, i, len(v), dimension)
		}
	}
	return resp.Embeddings, nil
}
