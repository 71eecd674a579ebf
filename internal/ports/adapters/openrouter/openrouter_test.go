package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sha22Maithani/Videoclip/internal/ports"
)

func scoreItems() []ports.ScoreRequestItem {
	return []ports.ScoreRequestItem{
		{Index: 0, Start: "00:00:00", End: "00:00:05", Text: "hello"},
		{Index: 1, Start: "00:00:05", End: "00:00:15", Text: "amazing reveal!"},
	}
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestScoreSegments_ParsesScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "[1] 00:00:05 - 00:00:15") {
			t.Errorf("prompt missing segment line: %+v", req.Messages)
		}
		w.Write([]byte(completionBody(`{"scores":[{"index":0,"score":2.5,"reason":"flat"},{"index":1,"score":8.1,"reason":"hook"}]}`)))
	}))
	defer srv.Close()

	a := New("test-key", "test-model", srv.URL)
	res, err := a.ScoreSegments(context.Background(), scoreItems())
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].Score != 2.5 || res[1].Score != 8.1 {
		t.Fatalf("unexpected scores: %+v", res)
	}
	if res[1].Reason != "hook" {
		t.Fatalf("unexpected reason: %q", res[1].Reason)
	}
}

func TestScoreSegments_StripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(completionBody("```json\n{\"scores\":[{\"index\":0,\"score\":5,\"reason\":\"r\"}]}\n```")))
	}))
	defer srv.Close()

	a := New("k", "m", srv.URL)
	res, err := a.ScoreSegments(context.Background(), scoreItems()[:1])
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Score != 5 {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestScoreSegments_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited","api_key":"sk-sensitive"}`))
	}))
	defer srv.Close()

	a := New("k", "m", srv.URL)
	_, err := a.ScoreSegments(context.Background(), scoreItems())
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry status: %v", err)
	}
	if strings.Contains(err.Error(), "sk-sensitive") {
		t.Fatalf("error leaked secret: %v", err)
	}
}

func TestScoreSegments_MalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(completionBody("sorry, I can't do that")))
	}))
	defer srv.Close()

	a := New("k", "m", srv.URL)
	if _, err := a.ScoreSegments(context.Background(), scoreItems()); err == nil {
		t.Fatal("expected error for unparseable content")
	}
}

func TestScoreSegments_EmptyBatch(t *testing.T) {
	a := New("k", "m", "https://openrouter.ai")
	res, err := a.ScoreSegments(context.Background(), nil)
	if err != nil || res != nil {
		t.Fatalf("empty batch should be a no-op, got %v, %v", res, err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"embedded", "here you go: {\"a\":1} thanks", `{"a":1}`, false},
		{"empty", "", "", true},
		{"no object", "nope", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	in := "Authorization: Bearer abc123, api_key=sk-foo, key sk-raw-key"
	out := redactSecrets(in, "sk-raw-key")
	for _, leak := range []string{"abc123", "sk-foo", "sk-raw-key"} {
		if strings.Contains(out, leak) {
			t.Fatalf("leaked %q in %q", leak, out)
		}
	}
}
