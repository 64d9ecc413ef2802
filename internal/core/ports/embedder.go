package ports

import (
	"context"

	"github.com/securevote/election-system/internal/core/domain"
)

// BoundingBox locates a detection inside the source image, in pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is a single face found by the extractor.
type Detection struct {
	Box       BoundingBox      `json:"box"`
	Embedding domain.Embedding `json:"embedding"`
}

// Embedder is the embedding-extractor collaborator. An empty detection list is
// the "no face found" outcome, not an error; errors mean the extractor itself
// failed and are wrapped as domain.ErrExtractorFailure by implementations.
type Embedder interface {
	// EnsureReady loads or warms the model. Called once at startup, before
	// the service accepts requests; safe to call again (idempotent).
	EnsureReady(ctx context.Context) error
	Extract(ctx context.Context, image []byte) ([]Detection, error)
}
