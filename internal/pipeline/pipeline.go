package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Sha22Maithani/Videoclip/internal/assembly"
	"github.com/Sha22Maithani/Videoclip/internal/ports"
	"github.com/Sha22Maithani/Videoclip/internal/ports/adapters/ffmpeg"
	"github.com/Sha22Maithani/Videoclip/internal/ports/adapters/openrouter"
	"github.com/Sha22Maithani/Videoclip/internal/render"
	"github.com/Sha22Maithani/Videoclip/internal/scoring"
	"github.com/Sha22Maithani/Videoclip/internal/selection"
	"github.com/Sha22Maithani/Videoclip/internal/transcript"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

const defaultWorkers = 2

type Config struct {
	TranscriptPath string
	InputVideo     string
	OutDir         string
	VideoTitle     string
	VideoID        string

	Options types.ProcessingOptions

	// UseModelScorer switches from the local heuristic to the external
	// model scorer (heuristic remains the fallback either way).
	UseModelScorer bool

	// Seed feeds the heuristic's jitter; 0 means derive from the clock.
	Seed int64

	// Workers bounds how many clips render concurrently; 0 means default.
	Workers int

	// MusicPath is the background bed mixed in when the options ask for it.
	MusicPath string

	// WorkDir is the base directory for temporary render artifacts.
	// If empty, defaults to ".cache".
	WorkDir string

	Log logrus.FieldLogger

	FFmpegPath  string
	FFprobePath string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string
}

var validate = validator.New()

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("transcript path is empty")
	}
	if _, err := os.Stat(c.TranscriptPath); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	if c.InputVideo == "" {
		return errors.New("input video is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input video: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if err := validate.Struct(c.Options); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	if c.Options.MinClipDuration > c.Options.MaxClipDuration {
		return fmt.Errorf("min clip duration must be <= max clip duration")
	}
	if !c.UseModelScorer {
		return nil
	}
	if c.OpenRouterAPIKey == "" {
		return errors.New("model scorer requires OPENROUTER_API_KEY")
	}
	return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
}

type Result struct {
	Manifest types.Manifest
	RunDir   string
}

// Run executes the whole pipeline: parse transcript, score, select, assemble,
// render each clip on a bounded worker pool, write the run manifest. A single
// clip's render failure is recorded in the manifest and never aborts its
// siblings; zero clips is a valid terminal outcome.
func Run(ctx context.Context, cfg Config) (Result, error) {
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	lines, err := readLines(cfg.TranscriptPath)
	if err != nil {
		return Result{}, fmt.Errorf("read transcript: %w", err)
	}
	segs, skippedLines := transcript.ParseStrict(lines)
	if skippedLines > 0 {
		log.WithField("lines", skippedLines).Warn("skipped malformed transcript lines")
	}
	log.WithField("segments", len(segs)).Info("transcript parsed")

	scorer := buildScorer(cfg, log)
	scored, err := scorer.Score(ctx, segs)
	if err != nil {
		return Result{}, fmt.Errorf("score segments: %w", err)
	}

	selected := selection.Select(scored, cfg.Options)
	clips := assembly.Build(selected, types.VideoMeta{Title: cfg.VideoTitle, ID: cfg.VideoID})
	log.WithFields(logrus.Fields{"selected": len(selected), "clips": len(clips)}).Info("segments selected and grouped")

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	clipsDir := filepath.Join(runDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return Result{}, err
	}

	workBase := cfg.WorkDir
	if workBase == "" {
		workBase = ".cache"
	}
	workDir := filepath.Join(workBase, "runs", hash(cfg.InputVideo))

	manifest := types.Manifest{Input: cfg.InputVideo, Clips: []types.ManifestClip{}}
	if len(clips) > 0 {
		tool := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
		renderer := render.New(tool, workDir, clipsDir, cfg.MusicPath, log)
		manifest.Clips = renderClips(ctx, renderer, cfg, clips, runDir, log)
	} else {
		log.Info("no segments qualified, writing empty manifest")
	}

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return Result{}, err
	}
	log.WithFields(logrus.Fields{"clips": len(manifest.Clips), "path": manifestPath}).Info("manifest written")

	return Result{Manifest: manifest, RunDir: runDir}, nil
}

func buildScorer(cfg Config, log logrus.FieldLogger) scoring.Scorer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	heuristic := scoring.NewHeuristic(seed)
	if !cfg.UseModelScorer {
		return heuristic
	}
	remote := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	return scoring.NewModel(remote, heuristic, log)
}

// renderClips runs each clip's pipeline as an independent unit of work under
// a bounded worker pool. All workers read the same source file and own their
// temp artifacts, so no coordination beyond the semaphore is needed.
func renderClips(ctx context.Context, renderer *render.Renderer, cfg Config, clips []types.Clip, runDir string, log logrus.FieldLogger) []types.ManifestClip {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	out := make([]types.ManifestClip, len(clips))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, clip := range clips {
		wg.Add(1)
		go func(i int, clip types.Clip) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mc := types.ManifestClip{
				Index:        clip.Index,
				Title:        clip.Title,
				StartSec:     clip.Start,
				EndSec:       clip.End,
				SegmentCount: len(clip.Segments),
			}
			file, err := renderer.Render(ctx, cfg.InputVideo, clip, cfg.Options)
			if err != nil {
				log.WithError(err).WithField("clip", clip.Index).Error("clip render failed")
				mc.Error = err.Error()
			} else {
				rel, relErr := filepath.Rel(runDir, file)
				if relErr != nil {
					rel = file
				}
				mc.File = filepath.ToSlash(rel)
			}
			out[i] = mc
		}(i, clip)
	}
	wg.Wait()
	return out
}

func readLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	return lines, nil
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.MediaTool = (*ffmpeg.Adapter)(nil)
var _ ports.SegmentScorer = (*openrouter.Adapter)(nil)
