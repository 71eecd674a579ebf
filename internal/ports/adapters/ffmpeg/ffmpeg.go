package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
)

// Vertical canvas filters. 9:16 at 1080x1920, matching the short-form
// platforms' native frame.
const (
	cropScaleFilter = "crop=ih*(9/16):ih,scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2"
	scalePadFilter  = "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2:black"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffprobe %s: %w\n%s", path, err, string(b))
	}

	var out struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return ports.MediaInfo{}, fmt.Errorf("no video stream in %s", path)
	}

	info := ports.MediaInfo{
		Width:  out.Streams[0].Width,
		Height: out.Streams[0].Height,
	}
	if out.Format.Duration != "" {
		sec, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
		if err != nil {
			return ports.MediaInfo{}, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
		}
		info.Duration = time.Duration(sec * float64(time.Second))
	}
	return info, nil
}

func (a *Adapter) Trim(ctx context.Context, in string, start, duration time.Duration, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(start),
		"-t", fmtSeconds(duration),
		"-i", in,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "22",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg trim: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) OverlaySubtitles(ctx context.Context, in, subPath, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vf", "subtitles="+escapeFilterPath(subPath),
		"-c:a", "copy",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg subtitles: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) Enhance(ctx context.Context, in string, spec ports.EnhanceSpec, out string) error {
	args := []string{"-y", "-i", in}
	if spec.MusicPath != "" {
		args = append(args, "-i", spec.MusicPath)
	}
	if spec.VisualCorrection {
		args = append(args, "-vf", "eq=brightness=0.05:saturation=1.3,unsharp=5:5:1.0:5:5:0.0")
	}
	if spec.MusicPath != "" {
		// Mix the original audio with the music bed at relative gain,
		// matching the longer of the two tracks.
		filter := fmt.Sprintf(
			"[0:a]volume=1[a1];[1:a]volume=%s[a2];[a1][a2]amix=inputs=2:duration=longest[aout]",
			strconv.FormatFloat(spec.MusicVolume, 'f', 2, 64),
		)
		args = append(args,
			"-filter_complex", filter,
			"-map", "0:v",
			"-map", "[aout]",
		)
	} else {
		args = append(args, "-af", "loudnorm=I=-16:TP=-1.5:LRA=11")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		out,
	)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg enhance: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) CropToVertical(ctx context.Context, in, out string) error {
	return a.reformat(ctx, in, cropScaleFilter, out)
}

func (a *Adapter) PadToVertical(ctx context.Context, in, out string) error {
	return a.reformat(ctx, in, scalePadFilter, out)
}

func (a *Adapter) reformat(ctx context.Context, in, filter, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vf", filter,
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg reformat: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
