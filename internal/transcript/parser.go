package transcript

import (
	"strings"

	"github.com/Sha22Maithani/Videoclip/internal/timecode"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// defaultSegmentSeconds is used when a segment has no parseable successor to
// infer its end time from.
const defaultSegmentSeconds = 10

// Parse converts transcript lines of the form "<timestamp> <text>" into
// ordered segments. Malformed lines are dropped without error; see
// ParseStrict for a skip count.
func Parse(lines []string) []types.Segment {
	segs, _ := ParseStrict(lines)
	return segs
}

// ParseStrict behaves like Parse and additionally reports how many non-blank
// lines were skipped because they had no text or an unparseable timestamp.
//
// Each segment ends where the next line starts. When the next line is absent
// or malformed the segment gets a default length instead. The input order is
// taken as-is: segments are contiguous only if the lines were chronological.
func ParseStrict(lines []string) ([]types.Segment, int) {
	var segs []types.Segment
	skipped := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, " ") {
			skipped++
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		start, ok := timecode.Parse(parts[0])
		if !ok {
			skipped++
			continue
		}

		end := start + defaultSegmentSeconds
		if next, ok := nextTimestamp(lines, i); ok {
			end = next
		}

		segs = append(segs, types.Segment{
			Start: float64(start),
			End:   float64(end),
			Text:  parts[1],
		})
	}
	return segs, skipped
}

func nextTimestamp(lines []string, i int) (int, bool) {
	if i+1 >= len(lines) {
		return 0, false
	}
	next := lines[i+1]
	if !strings.Contains(next, " ") {
		return 0, false
	}
	return timecode.Parse(strings.SplitN(next, " ", 2)[0])
}
