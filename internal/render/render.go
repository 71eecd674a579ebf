package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
	"github.com/Sha22Maithani/Videoclip/internal/subtitles"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

// verticalAspectThreshold separates "needs reformatting" from "already close
// to vertical". Width/height above it means the source is landscape-ish.
const verticalAspectThreshold = 0.65

// Stage names, in pipeline order.
const (
	StageExtract  = "extract"
	StageCaption  = "caption"
	StageEnhance  = "enhance"
	StageReformat = "reformat"
)

// StageError is a render failure with enough context to retry or discard the
// clip independently of its siblings.
type StageError struct {
	ClipIndex int
	Stage     string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("clip %d: %s: %v", e.ClipIndex, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Renderer turns one clip definition plus the source video into a final
// vertical output file. Stages run strictly in order, each producing a new
// artifact; intermediates live in workDir and are removed when the render
// finishes, successfully or not. The source file is never written to, so any
// number of renderers may share it.
type Renderer struct {
	tool      ports.MediaTool
	workDir   string
	outDir    string
	musicPath string
	log       logrus.FieldLogger
}

func New(tool ports.MediaTool, workDir, outDir, musicPath string, log logrus.FieldLogger) *Renderer {
	return &Renderer{tool: tool, workDir: workDir, outDir: outDir, musicPath: musicPath, log: log}
}

// Render executes extract -> caption -> enhance -> reformat for one clip and
// returns the final file path. Caption and enhance are skipped when their
// options are off. Cancellation is checked before every stage so an aborted
// pipeline stops between stages, never mid-artifact chain.
func (r *Renderer) Render(ctx context.Context, source string, clip types.Clip, opts types.ProcessingOptions) (string, error) {
	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageExtract, Err: err}
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageExtract, Err: err}
	}

	var temps []string
	defer func() {
		for _, p := range temps {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				r.log.WithError(err).WithField("path", p).Warn("could not remove temp artifact")
			}
		}
	}()

	cur, err := r.extract(ctx, source, clip)
	if err != nil {
		return "", err
	}
	temps = append(temps, cur)

	if opts.AutoCaptions {
		captioned, srt, err := r.caption(ctx, cur, clip)
		if err != nil {
			return "", err
		}
		if captioned != cur {
			temps = append(temps, captioned, srt)
			cur = captioned
		}
	}

	if opts.ApplyEnhancements || opts.AddBackgroundMusic {
		enhanced, err := r.enhance(ctx, cur, clip, opts)
		if err != nil {
			return "", err
		}
		temps = append(temps, enhanced)
		cur = enhanced
	}

	return r.reformat(ctx, cur, clip, opts)
}

func (r *Renderer) extract(ctx context.Context, source string, clip types.Clip) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageExtract, Err: err}
	}
	duration := clip.Duration()
	if duration <= 0 {
		return "", &StageError{
			ClipIndex: clip.Index,
			Stage:     StageExtract,
			Err:       fmt.Errorf("invalid span [%v, %v]", clip.Start, clip.End),
		}
	}

	out := filepath.Join(r.workDir, fmt.Sprintf("clip_%s_%s.mp4", time.Now().Format("20060102_150405"), shortID()))
	r.stageLog(clip, StageExtract).WithField("duration_sec", duration).Info("extracting clip span")
	if err := r.tool.Trim(ctx, source, secs(clip.Start), secs(duration), out); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageExtract, Err: err}
	}
	return out, nil
}

// caption burns an SRT track rendered from the clip's segments. With no
// segments there is nothing to caption and the input passes through.
func (r *Renderer) caption(ctx context.Context, in string, clip types.Clip) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", &StageError{ClipIndex: clip.Index, Stage: StageCaption, Err: err}
	}
	if len(clip.Segments) == 0 {
		return in, "", nil
	}

	srtPath := filepath.Join(r.workDir, fmt.Sprintf("captions_%s.srt", shortID()))
	if err := os.WriteFile(srtPath, []byte(subtitles.RenderSRT(clip.Segments)), 0o644); err != nil {
		return "", "", &StageError{ClipIndex: clip.Index, Stage: StageCaption, Err: err}
	}

	out := filepath.Join(r.workDir, fmt.Sprintf("captioned_%s_%s.mp4", baseName(in), shortID()))
	r.stageLog(clip, StageCaption).WithField("entries", len(clip.Segments)).Info("burning captions")
	if err := r.tool.OverlaySubtitles(ctx, in, srtPath, out); err != nil {
		os.Remove(srtPath)
		return "", "", &StageError{ClipIndex: clip.Index, Stage: StageCaption, Err: err}
	}
	return out, srtPath, nil
}

func (r *Renderer) enhance(ctx context.Context, in string, clip types.Clip, opts types.ProcessingOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageEnhance, Err: err}
	}

	spec := ports.EnhanceSpec{VisualCorrection: opts.ApplyEnhancements}
	if opts.AddBackgroundMusic && r.musicPath != "" {
		spec.MusicPath = r.musicPath
		spec.MusicVolume = float64(opts.MusicVolumePercent) / 100
	}

	out := filepath.Join(r.workDir, fmt.Sprintf("enhanced_%s_%s.mp4", baseName(in), shortID()))
	r.stageLog(clip, StageEnhance).WithField("music", spec.MusicPath != "").Info("enhancing clip")
	if err := r.tool.Enhance(ctx, in, spec, out); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageEnhance, Err: err}
	}
	return out, nil
}

// reformat normalizes every clip onto the 1080x1920 canvas. Landscape-ish
// sources are cropped (auto-zoom) or letterboxed; near-vertical sources are
// letterboxed to the canonical size for consistency.
func (r *Renderer) reformat(ctx context.Context, in string, clip types.Clip, opts types.ProcessingOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageReformat, Err: err}
	}

	info, err := r.tool.Probe(ctx, in)
	if err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageReformat, Err: err}
	}
	if info.Height <= 0 {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageReformat, Err: fmt.Errorf("invalid dimensions %dx%d", info.Width, info.Height)}
	}

	out := filepath.Join(r.outDir, fmt.Sprintf("shorts_%s_%s.mp4", baseName(in), shortID()))
	ratio := float64(info.Width) / float64(info.Height)
	crop := ratio > verticalAspectThreshold && opts.AutoZoomVertical
	r.stageLog(clip, StageReformat).WithFields(logrus.Fields{
		"ratio": ratio,
		"crop":  crop,
	}).Info("reformatting to vertical")

	if crop {
		err = r.tool.CropToVertical(ctx, in, out)
	} else {
		err = r.tool.PadToVertical(ctx, in, out)
	}
	if err != nil {
		return "", &StageError{ClipIndex: clip.Index, Stage: StageReformat, Err: err}
	}
	return out, nil
}

func (r *Renderer) stageLog(clip types.Clip, stage string) *logrus.Entry {
	return r.log.WithFields(logrus.Fields{"clip": clip.Index, "stage": stage})
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
