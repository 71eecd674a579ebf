package render

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// fakeTool records call order and writes real output files so temp-file
// lifecycle can be asserted.
type fakeTool struct {
	calls       []string
	probeInfo   ports.MediaInfo
	failOn      string
	enhanceSpec ports.EnhanceSpec
	srtSeen     string
}

var errToolFailure = errors.New("tool failure")

func (f *fakeTool) record(op, out string) error {
	f.calls = append(f.calls, op)
	if f.failOn == op {
		return errToolFailure
	}
	if out != "" {
		return os.WriteFile(out, []byte(op), 0o644)
	}
	return nil
}

func (f *fakeTool) Probe(_ context.Context, _ string) (ports.MediaInfo, error) {
	if err := f.record("probe", ""); err != nil {
		return ports.MediaInfo{}, err
	}
	return f.probeInfo, nil
}

func (f *fakeTool) Trim(_ context.Context, _ string, _, _ time.Duration, out string) error {
	return f.record("trim", out)
}

func (f *fakeTool) OverlaySubtitles(_ context.Context, _, subPath, out string) error {
	b, err := os.ReadFile(subPath)
	if err == nil {
		f.srtSeen = string(b)
	}
	return f.record("subtitles", out)
}

func (f *fakeTool) Enhance(_ context.Context, _ string, spec ports.EnhanceSpec, out string) error {
	f.enhanceSpec = spec
	return f.record("enhance", out)
}

func (f *fakeTool) CropToVertical(_ context.Context, _, out string) error {
	return f.record("crop", out)
}

func (f *fakeTool) PadToVertical(_ context.Context, _, out string) error {
	return f.record("pad", out)
}

var _ ports.MediaTool = (*fakeTool)(nil)

func testLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func landscape() ports.MediaInfo { return ports.MediaInfo{Width: 1920, Height: 1080} }

func testClip() types.Clip {
	return types.Clip{
		Index: 1,
		Title: "Clip 1",
		Start: 10,
		End:   40,
		Segments: []types.Segment{
			{Start: 10, End: 25, Text: "hello there"},
			{Start: 25, End: 40, Text: "big finish!"},
		},
	}
}

func newRenderer(t *testing.T, tool ports.MediaTool, music string) (*Renderer, string, string) {
	t.Helper()
	tmp := t.TempDir()
	workDir := filepath.Join(tmp, "work")
	outDir := filepath.Join(tmp, "out")
	return New(tool, workDir, outDir, music, testLog()), workDir, outDir
}

func TestRender_SkipsOptionalStages(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, outDir := newRenderer(t, tool, "")

	opts := types.DefaultOptions()
	opts.AutoCaptions = false
	opts.ApplyEnhancements = false
	opts.AutoZoomVertical = false

	final, err := r.Render(context.Background(), "src.mp4", testClip(), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"trim", "probe", "pad"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected stage order: %v, want %v", tool.calls, want)
	}
	if filepath.Dir(final) != outDir {
		t.Fatalf("final artifact not in out dir: %s", final)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}
}

func TestRender_AllStagesInOrder(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, _ := newRenderer(t, tool, "")

	opts := types.DefaultOptions() // captions, enhancements, zoom all on
	if _, err := r.Render(context.Background(), "src.mp4", testClip(), opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"trim", "subtitles", "enhance", "probe", "crop"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected stage order: %v, want %v", tool.calls, want)
	}
	if !strings.Contains(tool.srtSeen, "00:00:00,000 --> 00:00:15,000") {
		t.Fatalf("subtitle track should use clip-relative times:\n%s", tool.srtSeen)
	}
}

func TestRender_NearVerticalSourceIsPadded(t *testing.T) {
	tool := &fakeTool{probeInfo: ports.MediaInfo{Width: 1080, Height: 1920}}
	r, _, _ := newRenderer(t, tool, "")

	opts := types.DefaultOptions()
	opts.AutoCaptions = false
	opts.ApplyEnhancements = false
	// Auto-zoom stays on, but a near-vertical source is normalized with
	// padding, not cropped.
	if _, err := r.Render(context.Background(), "src.mp4", testClip(), opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if tool.calls[len(tool.calls)-1] != "pad" {
		t.Fatalf("expected pad for near-vertical source, calls: %v", tool.calls)
	}
}

func TestRender_CaptionPassthroughWithoutSegments(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, _ := newRenderer(t, tool, "")

	clip := testClip()
	clip.Segments = nil
	opts := types.DefaultOptions()
	opts.ApplyEnhancements = false

	if _, err := r.Render(context.Background(), "src.mp4", clip, opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, c := range tool.calls {
		if c == "subtitles" {
			t.Fatalf("caption stage must pass through with no segments: %v", tool.calls)
		}
	}
}

func TestRender_BackgroundMusicSpec(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, _ := newRenderer(t, tool, "bed.mp3")

	opts := types.DefaultOptions()
	opts.AutoCaptions = false
	opts.ApplyEnhancements = false
	opts.AddBackgroundMusic = true
	opts.MusicVolumePercent = 40

	if _, err := r.Render(context.Background(), "src.mp4", testClip(), opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if tool.enhanceSpec.MusicPath != "bed.mp3" {
		t.Fatalf("music path not passed: %+v", tool.enhanceSpec)
	}
	if tool.enhanceSpec.MusicVolume != 0.4 {
		t.Fatalf("expected relative gain 0.4, got %v", tool.enhanceSpec.MusicVolume)
	}
	if tool.enhanceSpec.VisualCorrection {
		t.Fatalf("visual correction should follow ApplyEnhancements only")
	}
}

func TestRender_InvalidSpanFailsBeforeAnyToolCall(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, _ := newRenderer(t, tool, "")

	clip := testClip()
	clip.End = clip.Start

	_, err := r.Render(context.Background(), "src.mp4", clip, types.DefaultOptions())
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Stage != StageExtract || se.ClipIndex != 1 {
		t.Fatalf("unexpected stage error: %+v", se)
	}
	if len(tool.calls) != 0 {
		t.Fatalf("no tool calls expected for invalid span, got %v", tool.calls)
	}
}

func TestRender_StageFailureCarriesContext(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape(), failOn: "enhance"}
	r, workDir, _ := newRenderer(t, tool, "")

	_, err := r.Render(context.Background(), "src.mp4", testClip(), types.DefaultOptions())
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Stage != StageEnhance {
		t.Fatalf("expected enhance stage, got %q", se.Stage)
	}
	if !errors.Is(err, errToolFailure) {
		t.Fatalf("cause not preserved: %v", err)
	}

	// Earlier intermediates must have been cleaned up.
	left, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatalf("read work dir: %v", readErr)
	}
	if len(left) != 0 {
		t.Fatalf("temp artifacts left behind: %v", left)
	}
}

func TestRender_CleansUpTempsOnSuccess(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, workDir, _ := newRenderer(t, tool, "")

	final, err := r.Render(context.Background(), "src.mp4", testClip(), types.DefaultOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	left, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatalf("read work dir: %v", readErr)
	}
	if len(left) != 0 {
		t.Fatalf("temp artifacts left behind: %v", left)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final artifact must survive cleanup: %v", err)
	}
}

func TestRender_CancelledContextAbortsBeforeNextStage(t *testing.T) {
	tool := &fakeTool{probeInfo: landscape()}
	r, _, _ := newRenderer(t, tool, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, "src.mp4", testClip(), types.DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(tool.calls) != 0 {
		t.Fatalf("cancelled render must not invoke the tool, got %v", tool.calls)
	}
}
