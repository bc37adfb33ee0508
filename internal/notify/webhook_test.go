package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestNewCrawlPayload_Success(t *testing.T) {
	p := NewCrawlPayload(CrawlReport{
		Seed:             "seed-puuid",
		PlayersProcessed: 120,
		MatchesWritten:   47832,
		Indexed:          47000,
		Elapsed:          18*time.Hour + 32*time.Minute,
	})

	if p.Content != "" {
		t.Errorf("Expected no mention on success, got %q", p.Content)
	}
	if len(p.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got %d", len(p.Embeds))
	}
	e := p.Embeds[0]
	if e.Color != colorGreen || e.Title != "Crawl finished" {
		t.Errorf("Unexpected embed header %q color=%d", e.Title, e.Color)
	}

	got := map[string]string{}
	for _, f := range e.Fields {
		got[f.Name] = f.Value
	}
	if got["Matches"] != "47,832" {
		t.Errorf("Matches = %q, want 47,832", got["Matches"])
	}
	if got["Runtime"] != "18h 32m" {
		t.Errorf("Runtime = %q, want 18h 32m", got["Runtime"])
	}
	if got["Lineups indexed"] != "47,000" {
		t.Errorf("Lineups indexed = %q", got["Lineups indexed"])
	}
	if _, ok := got["Failed fetches"]; ok {
		t.Error("Expected no failure field when nothing failed")
	}
}

func TestNewCrawlPayload_KeyRejected(t *testing.T) {
	p := NewCrawlPayload(CrawlReport{Seed: "s", Err: errors.New("riot: api key rejected"), KeyRejected: true})

	if !strings.Contains(p.Content, "@here") {
		t.Error("Expected @here mention for a rejected key")
	}
	e := p.Embeds[0]
	if e.Color != colorRed || e.Description != "riot: api key rejected" {
		t.Errorf("Unexpected failure embed %+v", e)
	}
	if !strings.Contains(e.Footer.Text, "RIOT_API_KEY") {
		t.Errorf("Footer = %q", e.Footer.Text)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.n); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWebhook_Send(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewWebhook(server.URL).SendCrawlReport(context.Background(), CrawlReport{Seed: "s", MatchesWritten: 3})
	if err != nil {
		t.Fatalf("SendCrawlReport: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(p.Embeds) != 1 || p.Embeds[0].Title != "Crawl finished" {
		t.Errorf("Unexpected payload %+v", p)
	}
}

func TestWebhook_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := NewWebhook(server.URL).Send(context.Background(), Payload{Content: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewWebhook(server.URL).Send(context.Background(), Payload{Content: "hi"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Expected status 400 error, got %v", err)
	}
}
