package types

// Segment is one timestamped unit of transcript text. The parser creates
// segments with Score=0 and Selected=false; the scorer and selector return
// updated copies, so a segment value is never mutated by two stages.
type Segment struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Selected bool    `json:"selected"`
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// Clip is a merged span of selected segments destined for one output file.
// Duration covers the enclosing span, gaps between members included.
type Clip struct {
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Start    float64   `json:"start"`
	End      float64   `json:"end"`
	Segments []Segment `json:"segments"`
}

func (c Clip) Duration() float64 { return c.End - c.Start }

// VideoMeta carries the source video identity used for clip titling.
type VideoMeta struct {
	Title string
	ID    string
}

// ProcessingOptions controls selection and rendering. Ranges mirror what the
// submission form accepts; the pipeline validates them before running.
type ProcessingOptions struct {
	MaxClipDuration    int  `json:"max_clip_duration" validate:"gte=15,lte=60"`
	MinClipDuration    int  `json:"min_clip_duration" validate:"gte=5,lte=30"`
	MaxClipCount       int  `json:"max_clip_count" validate:"gte=1,lte=10"`
	AutoZoomVertical   bool `json:"auto_zoom_vertical"`
	ApplyEnhancements  bool `json:"apply_enhancements"`
	AddBackgroundMusic bool `json:"add_background_music"`
	MusicVolumePercent int  `json:"music_volume_percent" validate:"gte=0,lte=100"`
	AutoCaptions       bool `json:"auto_captions"`
}

func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		MaxClipDuration:    60,
		MinClipDuration:    15,
		MaxClipCount:       3,
		AutoZoomVertical:   true,
		ApplyEnhancements:  true,
		AddBackgroundMusic: false,
		MusicVolumePercent: 30,
		AutoCaptions:       true,
	}
}

type Manifest struct {
	Input string         `json:"input"`
	Clips []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	Index        int     `json:"index"`
	Title        string  `json:"title"`
	StartSec     float64 `json:"start_sec"`
	EndSec       float64 `json:"end_sec"`
	SegmentCount int     `json:"segment_count"`
	File         string  `json:"file"`
	Error        string  `json:"error,omitempty"`
}
