package subtitles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sha22Maithani/Videoclip/internal/timecode"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// RenderSRT builds an SRT document for a clip's segments. Entry times are
// relative to the clip's own start (the earliest segment start), since the
// subtitle file is burned onto the already-trimmed clip. Returns "" when
// there are no segments.
func RenderSRT(segs []types.Segment) string {
	if len(segs) == 0 {
		return ""
	}

	ordered := make([]types.Segment, len(segs))
	copy(ordered, segs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})
	clipStart := ordered[0].Start

	var b strings.Builder
	for i, s := range ordered {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", timecode.FormatSRT(s.Start-clipStart), timecode.FormatSRT(s.End-clipStart))
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
