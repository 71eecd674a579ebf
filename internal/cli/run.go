package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sha22Maithani/Videoclip/internal/pipeline"
	"github.com/Sha22Maithani/Videoclip/internal/types"
)

func run(cmd *cobra.Command, transcriptPath, videoPath string) error {
	outDir, _ := cmd.Flags().GetString("out")
	clipsN, _ := cmd.Flags().GetInt("clips")
	minSec, _ := cmd.Flags().GetInt("min")
	maxSec, _ := cmd.Flags().GetInt("max")
	captions, _ := cmd.Flags().GetBool("captions")
	enhance, _ := cmd.Flags().GetBool("enhance")
	zoom, _ := cmd.Flags().GetBool("zoom")
	musicPath, _ := cmd.Flags().GetString("music")
	musicVol, _ := cmd.Flags().GetInt("music-volume")
	scorerName, _ := cmd.Flags().GetString("scorer")
	title, _ := cmd.Flags().GetString("title")
	workers, _ := cmd.Flags().GetInt("workers")
	verbose, _ := cmd.Flags().GetBool("verbose")
	seed, _ := cmd.Flags().GetInt64("seed")

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var useModel bool
	switch strings.ToLower(scorerName) {
	case "heuristic":
	case "model":
		useModel = true
	default:
		return fmt.Errorf("unknown scorer %q (want heuristic or model)", scorerName)
	}

	absTranscript, err := filepath.Abs(transcriptPath)
	if err != nil {
		return err
	}
	absVideo, err := filepath.Abs(videoPath)
	if err != nil {
		return err
	}

	opts := types.DefaultOptions()
	opts.MaxClipDuration = maxSec
	opts.MinClipDuration = minSec
	opts.MaxClipCount = clipsN
	opts.AutoCaptions = captions
	opts.ApplyEnhancements = enhance
	opts.AutoZoomVertical = zoom
	opts.AddBackgroundMusic = musicPath != ""
	opts.MusicVolumePercent = musicVol

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := pipeline.Config{
		TranscriptPath: absTranscript,
		InputVideo:     absVideo,
		OutDir:         outDir,
		VideoTitle:     title,
		Options:        opts,
		UseModelScorer: useModel,
		Seed:           seed,
		Workers:        workers,
		MusicPath:      musicPath,
		Log:            log,

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        os.Getenv("OPENROUTER_MODEL"),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: splitHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),
	}
	if useModel && cfg.OpenRouterAPIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required for the model scorer (set it in .env)")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, c := range res.Manifest.Clips {
		if c.Error != "" {
			failed++
		}
	}
	log.WithFields(logrus.Fields{
		"clips":  len(res.Manifest.Clips),
		"failed": failed,
		"dir":    res.RunDir,
	}).Info("run complete")
	if failed > 0 && failed == len(res.Manifest.Clips) {
		return errors.New("all clips failed to render, see manifest.json")
	}
	return nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitHosts(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
