package selection

import (
	"sort"

	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// minSegmentSeconds filters out segments too short to carry a clip on their
// own regardless of configured bounds.
const minSegmentSeconds = 3

// Select ranks scored segments by score and accepts the best candidates that
// fit the configured duration window, up to MaxClipCount. Accepted segments
// are returned as copies with Selected=true, in score-descending order; the
// assembler re-sorts chronologically. Fewer than MaxClipCount survivors is a
// valid outcome, including zero.
//
// The sort is stable so equal scores keep their transcript order and the
// selection stays deterministic.
func Select(segs []types.Segment, opts types.ProcessingOptions) []types.Segment {
	maxDur := float64(opts.MaxClipDuration)
	if maxDur <= 0 {
		maxDur = float64(types.DefaultOptions().MaxClipDuration)
	}
	minDur := float64(opts.MinClipDuration)
	if minDur < minSegmentSeconds {
		minDur = minSegmentSeconds
	}
	maxCount := opts.MaxClipCount
	if maxCount <= 0 {
		maxCount = types.DefaultOptions().MaxClipCount
	}

	ranked := make([]types.Segment, len(segs))
	copy(ranked, segs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var selected []types.Segment
	for _, s := range ranked {
		if len(selected) >= maxCount {
			break
		}
		d := s.Duration()
		if d < minDur || d > maxDur {
			continue
		}
		s.Selected = true
		selected = append(selected, s)
	}
	return selected
}
