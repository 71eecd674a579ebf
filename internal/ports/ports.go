package ports

import (
	"context"
	"time"
)

// MediaInfo describes the source video stream a render stage cares about.
type MediaInfo struct {
	Duration time.Duration
	Width    int
	Height   int
}

// EnhanceSpec is the declarative input to the enhancement stage. MusicPath
// empty means no background bed is mixed in.
type EnhanceSpec struct {
	VisualCorrection bool
	MusicPath        string
	MusicVolume      float64
}

// MediaTool is the media transform engine boundary. Every operation reads the
// input path and writes a new output file; inputs are never modified.
type MediaTool interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
	Trim(ctx context.Context, in string, start, duration time.Duration, out string) error
	OverlaySubtitles(ctx context.Context, in, subPath, out string) error
	Enhance(ctx context.Context, in string, spec EnhanceSpec, out string) error
	CropToVertical(ctx context.Context, in, out string) error
	PadToVertical(ctx context.Context, in, out string) error
}

// ScoreRequestItem is one segment in an external scoring request. Index is
// local to the request, timestamps are preformatted for the prompt.
type ScoreRequestItem struct {
	Index int
	Start string
	End   string
	Text  string
}

// ScoreResult is the external scorer's verdict for one requested index.
// Score is expected in [0,10]; the caller clamps defensively.
type ScoreResult struct {
	Index  int
	Score  float64
	Reason string
}

// SegmentScorer scores a batch of segments in a single remote call. Any
// transport or parse failure surfaces as an error; callers fall back to
// local scoring and must never treat it as fatal.
type SegmentScorer interface {
	ScoreSegments(ctx context.Context, items []ScoreRequestItem) ([]ScoreResult, error)
}
