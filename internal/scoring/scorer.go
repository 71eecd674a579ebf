package scoring

import (
	"context"

	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// Scorer assigns an engagement score to every segment and returns updated
// copies; input segments are left untouched. Implementations are chosen at
// construction time and are interchangeable downstream.
type Scorer interface {
	Score(ctx context.Context, segs []types.Segment) ([]types.Segment, error)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
