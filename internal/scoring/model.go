package scoring

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
	"github.com/Sha22Maithani/Videoclip/internal/timecode"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

const (
	// maxTokensPerChunk bounds one remote scoring request, leaving headroom
	// for the model response.
	maxTokensPerChunk = 4000
)

// Model scores segments through an external model, one request per
// token-budgeted chunk. Remote failures degrade to the local heuristic for
// the affected chunk; a missing index in an otherwise valid response degrades
// only that segment. Scoring is therefore never fatal.
type Model struct {
	remote   ports.SegmentScorer
	fallback *Heuristic
	log      logrus.FieldLogger
}

func NewModel(remote ports.SegmentScorer, fallback *Heuristic, log logrus.FieldLogger) *Model {
	return &Model{remote: remote, fallback: fallback, log: log}
}

func (m *Model) Score(ctx context.Context, segs []types.Segment) ([]types.Segment, error) {
	out := make([]types.Segment, len(segs))
	copy(out, segs)

	for _, ch := range chunkByTokens(segs, maxTokensPerChunk) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.scoreChunk(ctx, out, ch)
	}
	return out, nil
}

// chunk is a half-open segment index range [lo,hi).
type chunk struct {
	lo, hi int
}

// chunkByTokens splits segments so each chunk's estimated token count stays
// within budget. The estimate is len(text)/4, the usual rough approximation.
// A single oversized segment still gets its own chunk.
func chunkByTokens(segs []types.Segment, budget int) []chunk {
	var chunks []chunk
	lo := 0
	tokens := 0
	for i, s := range segs {
		est := len(s.Text) / 4
		if tokens+est > budget && i > lo {
			chunks = append(chunks, chunk{lo: lo, hi: i})
			lo = i
			tokens = 0
		}
		tokens += est
	}
	if lo < len(segs) {
		chunks = append(chunks, chunk{lo: lo, hi: len(segs)})
	}
	return chunks
}

func (m *Model) scoreChunk(ctx context.Context, out []types.Segment, ch chunk) {
	items := make([]ports.ScoreRequestItem, 0, ch.hi-ch.lo)
	for i := ch.lo; i < ch.hi; i++ {
		items = append(items, ports.ScoreRequestItem{
			Index: i - ch.lo,
			Start: timecode.Format(int(out[i].Start)),
			End:   timecode.Format(int(out[i].End)),
			Text:  out[i].Text,
		})
	}

	results, err := m.remote.ScoreSegments(ctx, items)
	if err != nil {
		m.log.WithError(err).WithField("segments", len(items)).
			Warn("external scoring unavailable, falling back to heuristic")
		for i := ch.lo; i < ch.hi; i++ {
			out[i].Score = m.fallback.scoreTextScaled(out[i].Text)
		}
		return
	}

	byIndex := make(map[int]float64, len(results))
	for _, r := range results {
		byIndex[r.Index] = clamp(r.Score, 0, 10)
	}
	for i := ch.lo; i < ch.hi; i++ {
		if score, ok := byIndex[i-ch.lo]; ok {
			out[i].Score = score
			continue
		}
		out[i].Score = m.fallback.scoreTextScaled(out[i].Text)
	}
}
