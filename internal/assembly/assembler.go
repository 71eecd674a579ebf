package assembly

import (
	"fmt"
	"sort"

	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// mergeGapSeconds is the maximum silence between a group's running end and
// the next segment for them to share one clip.
const mergeGapSeconds = 5

// Build groups selected segments into clip definitions. Segments are sorted
// by start time, then merged left to right: a segment joins the current group
// when the gap to the group's running end is under mergeGapSeconds, otherwise
// the group is closed into a clip and a new one starts. Single greedy pass,
// no backtracking.
//
// Clip indices count up from 1 in close order. A clip spans from its first
// segment's start to its last segment's end, gaps included.
func Build(selected []types.Segment, video types.VideoMeta) []types.Clip {
	if len(selected) == 0 {
		return nil
	}

	ordered := make([]types.Segment, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var clips []types.Clip
	var group []types.Segment
	groupEnd := 0.0

	for _, s := range ordered {
		if len(group) == 0 || s.Start-groupEnd < mergeGapSeconds {
			group = append(group, s)
			groupEnd = s.End
			continue
		}
		clips = append(clips, closeGroup(group, video, len(clips)+1))
		group = []types.Segment{s}
		groupEnd = s.End
	}
	clips = append(clips, closeGroup(group, video, len(clips)+1))
	return clips
}

func closeGroup(group []types.Segment, video types.VideoMeta, index int) types.Clip {
	first := group[0]
	last := group[len(group)-1]

	title := fmt.Sprintf("Clip %d", index)
	if video.Title != "" {
		title = fmt.Sprintf("%s - Clip %d", video.Title, index)
	}

	segs := make([]types.Segment, len(group))
	copy(segs, group)
	return types.Clip{
		Index:    index,
		Title:    title,
		Start:    first.Start,
		End:      last.End,
		Segments: segs,
	}
}
