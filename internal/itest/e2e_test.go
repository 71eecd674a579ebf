//go:build integration

package itest

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sha22Maithani/Videoclip/internal/pipeline"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// TestE2E_Heuristic runs the whole pipeline offline: a generated landscape
// fixture, a transcript with one clearly engaging span, and the local scorer.
func TestE2E_Heuristic(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")

	// Build a 60s silent landscape mp4.
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:d=60",
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	transcript := filepath.Join(tmp, "transcript.txt")
	content := "00:00:00 welcome back everyone\n" +
		"00:00:20 this is the most amazing secret trick you have never seen!\n" +
		"00:00:40 what do you think happens next?\n" +
		"00:00:55 see you soon\n"
	if err := os.WriteFile(transcript, []byte(content), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	opts := types.DefaultOptions()
	opts.MaxClipDuration = 60
	opts.MinClipDuration = 15
	opts.MaxClipCount = 2
	opts.ApplyEnhancements = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := pipeline.Run(ctx, pipeline.Config{
		TranscriptPath: transcript,
		InputVideo:     in,
		OutDir:         filepath.Join(tmp, "out"),
		WorkDir:        filepath.Join(tmp, "cache"),
		Options:        opts,
		Seed:           1,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		Log:            log,
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(res.RunDir, "manifest.json")); err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	if len(res.Manifest.Clips) == 0 {
		t.Fatalf("expected at least one clip")
	}
	for _, c := range res.Manifest.Clips {
		if c.Error != "" {
			t.Fatalf("clip %d failed: %s", c.Index, c.Error)
		}
		out := filepath.Join(res.RunDir, filepath.FromSlash(c.File))
		dur, err := probeDurationSeconds(out)
		if err != nil {
			t.Fatalf("probe clip %d: %v", c.Index, err)
		}
		want := c.EndSec - c.StartSec
		if dur < want-1.5 || dur > want+1.5 {
			t.Fatalf("clip %d duration = %.2fs, want about %.2fs", c.Index, dur, want)
		}
		w, h, err := probeDimensions(out)
		if err != nil {
			t.Fatalf("probe dimensions clip %d: %v", c.Index, err)
		}
		if w != 1080 || h != 1920 {
			t.Fatalf("clip %d is %dx%d, want 1080x1920", c.Index, w, h)
		}
	}
}
