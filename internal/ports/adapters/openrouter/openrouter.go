package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
)

// Adapter scores transcript segments through an OpenRouter-compatible chat
// completions endpoint. One request covers one pre-chunked batch. There are
// no retries here; the scoring layer falls back to its local heuristic on
// any error this adapter returns.
type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

const requestTimeout = 90 * time.Second

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

func (a *Adapter) ScoreSegments(ctx context.Context, items []ports.ScoreRequestItem) ([]ports.ScoreResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": buildPrompt(items)},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "segment_scores",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"scores": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"index":  map[string]any{"type": "integer"},
									"score":  map[string]any{"type": "number"},
									"reason": map[string]any{"type": "string"},
								},
								"required": []string{"index", "score", "reason"},
							},
						},
					},
					"required": []string{"scores"},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("openrouter timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Choices) == 0 {
		return nil, errors.New("openrouter: no choices in response")
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	clean, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var out struct {
		Scores []struct {
			Index  int     `json:"index"`
			Score  float64 `json:"score"`
			Reason string  `json:"reason"`
		} `json:"scores"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("openrouter: parse scores: %w", err)
	}

	results := make([]ports.ScoreResult, 0, len(out.Scores))
	for _, s := range out.Scores {
		results = append(results, ports.ScoreResult{Index: s.Index, Score: s.Score, Reason: s.Reason})
	}
	return results, nil
}

func buildPrompt(items []ports.ScoreRequestItem) string {
	var b strings.Builder
	b.WriteString("Below are transcript segments from a video with timestamps. ")
	b.WriteString("Assign each segment an engagement score from 0.0 to 10.0 based on how likely it would make compelling short-form content.\n\n")
	b.WriteString("Consider: emotional content (excitement, surprise, humor), important facts or revelations, ")
	b.WriteString("controversial or surprising statements, well-structured explanations, quotable moments.\n\n")
	b.WriteString("Segments:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "[%d] %s - %s: %q\n", it.Index, it.Start, it.End, it.Text)
	}
	b.WriteString("\nReturn strictly valid JSON (no markdown, no code fences) of the form ")
	b.WriteString(`{"scores":[{"index":0,"score":7.5,"reason":"..."}]} with one entry per segment index.`)
	return b.String()
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the first JSON object found.
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}

	return "", fmt.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key"?\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
