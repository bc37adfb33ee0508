package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := NewClient("RGAPI-test-key",
		WithBaseURL(server.URL),
		WithRetry(2, time.Millisecond),
		WithRateLimits(0, 0),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_EmptyKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("Expected error for empty key")
	}
}

func TestGetMatch_SendsTokenAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") != "RGAPI-test-key" {
			t.Errorf("Expected X-Riot-Token header, got %q", r.Header.Get("X-Riot-Token"))
		}
		if r.URL.Path != "/lol/match/v5/matches/NA1_1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"metadata":{"matchId":"NA1_1"},"info":{"queueId":420,"participants":[{"puuid":"p1","teamId":100,"teamPosition":"MIDDLE","totalMinionsKilled":150,"neutralMinionsKilled":12}]}}`))
	})

	m, err := c.GetMatch(context.Background(), "NA1_1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	p, ok := m.FindParticipant("p1")
	if !ok {
		t.Fatal("Expected participant p1")
	}
	if p.CS() != 162 {
		t.Errorf("CS() = %d, want 162", p.CS())
	}
	if p.Position() != "MIDDLE" {
		t.Errorf("Position() = %q, want MIDDLE", p.Position())
	}
}

func TestDoRequest_RetriesRateLimit(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`["NA1_1","NA1_2"]`))
	})

	ids, err := c.GetMatchHistory(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("GetMatchHistory: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 ids, got %d", len(ids))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDoRequest_ErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      error
		retryable bool
	}{
		{"not found", http.StatusNotFound, "", ErrNotFound, false},
		{"forbidden", http.StatusForbidden, "", ErrForbidden, false},
		{"server error", http.StatusBadGateway, "", ErrUnavailable, true},
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited, true},
		{"malformed", http.StatusOK, "{not json", ErrMalformedPayload, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.GetTimeline(context.Background(), "NA1_1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if tt.status != http.StatusOK && StatusCode(err) != tt.status {
				t.Errorf("StatusCode = %d, want %d", StatusCode(err), tt.status)
			}
		})
	}
}

func TestGetLeagueEntries_Path(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lol/league-exp/v4/entries/RANKED_SOLO_5x5/GOLD/II" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "3" {
			t.Errorf("Expected page=3, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"puuid":"p9","queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II"}]`))
	})

	entries, err := c.GetLeagueEntries(context.Background(), QueueSoloDuo, "GOLD", "II", 3)
	if err != nil {
		t.Fatalf("GetLeagueEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].PUUID != "p9" {
		t.Errorf("Unexpected entries %+v", entries)
	}
}

func TestGetSoloQueueRank(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"queueType":"RANKED_FLEX_SR","tier":"IRON","rank":"I"},{"queueType":"RANKED_SOLO_5x5","tier":"EMERALD","rank":"III"}]`))
	})

	tier, div, hasRank, err := c.GetSoloQueueRank(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetSoloQueueRank: %v", err)
	}
	if !hasRank || tier != "EMERALD" || div != "III" {
		t.Errorf("Got %s %s (hasRank=%v), want EMERALD III", tier, div, hasRank)
	}
}

func TestDoRequest_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.GetMatch(ctx, "NA1_1"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
