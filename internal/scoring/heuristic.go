package scoring

import (
	"context"
	"math/rand"
	"strings"

	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// engagementKeywords mark phrases that tend to perform well as short-form
// hooks. Matching is case-insensitive substring.
var engagementKeywords = []string{
	"amazing", "wow", "incredible", "unbelievable", "shocking",
	"important", "fascinating", "secret", "reveal", "exclusive",
	"first time", "never before", "breaking", "discover", "learn",
	"best", "worst", "most", "least", "top", "favorite",
}

// Heuristic scores segments locally: keyword hits, text length, punctuation,
// plus a small seeded jitter so equal texts do not always tie. Deterministic
// for a fixed seed, which keeps tests and reruns reproducible.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

// Score never fails; the error return satisfies the Scorer contract.
func (h *Heuristic) Score(_ context.Context, segs []types.Segment) ([]types.Segment, error) {
	out := make([]types.Segment, len(segs))
	for i, s := range segs {
		s.Score = h.scoreText(s.Text) + h.rng.Float64()*jitterRange
		out[i] = s
	}
	return out, nil
}

const jitterRange = 0.3

// scoreText is the deterministic part of the heuristic. No upper bound.
func (h *Heuristic) scoreText(text string) float64 {
	lower := strings.ToLower(text)

	score := 0.0
	for _, kw := range engagementKeywords {
		if strings.Contains(lower, kw) {
			score += 0.5
		}
	}

	// Longer segments tend to carry more substance, capped at one point.
	if lengthBonus := float64(len(text)) / 100; lengthBonus < 1 {
		score += lengthBonus
	} else {
		score += 1
	}

	if strings.Contains(text, "?") {
		score += 0.5
	}
	if strings.Contains(text, "!") {
		score += 0.3
	}
	return score
}

// scoreTextScaled returns the heuristic score clamped to the external
// scorer's [0,10] scale, jitter included, for fallback use.
func (h *Heuristic) scoreTextScaled(text string) float64 {
	return clamp(h.scoreText(text)+h.rng.Float64()*jitterRange, 0, 10)
}
