package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"

	json "github.com/goccy/go-json"
)

type recordingActions struct {
	got service.Params
	out any
	err error
}

func (r *recordingActions) Do(_ context.Context, p service.Params) (any, error) {
	r.got = p
	return r.out, r.err
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return m
}

func TestServer_Options(t *testing.T) {
	srv := NewServer(&recordingActions{}, WithAllowOrigin("https://rift.example"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://rift.example" {
		t.Errorf("unexpected allow origin %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestServer_MergesQueryAndBody(t *testing.T) {
	acts := &recordingActions{out: map[string]bool{"ok": true}}
	srv := NewServer(acts)

	body := `{"action":"compare","gameName":"Body","tagLine":"NA1","matchCount":"7",
"selectedMatchIds":["NA1_1"],"tierBump":2,"lineup":[{"side":"BLUE","role":"MID","champ":"Ahri"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api?gameName=Query&matchCount=12", strings.NewReader(body))
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	p := acts.got
	if p.Action != "compare" || p.GameName != "Query" || p.TagLine != "NA1" {
		t.Errorf("unexpected merge %+v", p)
	}
	if p.MatchCount != 12 || p.TierBump != 2 || len(p.SelectedMatchIDs) != 1 {
		t.Errorf("unexpected numeric fields %+v", p)
	}
	if len(p.Lineup) != 1 || p.Lineup[0].Champion != "Ahri" {
		t.Errorf("lineup not decoded: %+v", p.Lineup)
	}
	if rec.Header().Get("X-Request-ID") != "req-1" {
		t.Error("incoming request id should be echoed")
	}
}

func TestServer_BodyMatchCountString(t *testing.T) {
	acts := &recordingActions{out: 1}
	srv := NewServer(acts)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"getRecap","matchCount":"lots"}`)))
	if rec.Code != http.StatusOK || acts.got.MatchCount != 0 {
		t.Errorf("bad matchCount should fall back to the default, got %d (%d)", acts.got.MatchCount, rec.Code)
	}
}

func TestServer_InvalidBody(t *testing.T) {
	srv := NewServer(&recordingActions{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope")))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "invalid_body" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"service error", service.ErrUnknownAction, 400, "unknown_action"},
		{"missing id", service.ErrMissingRiotID, 400, "missing_riot_id"},
		{"riot 404", &riot.APIError{StatusCode: 404, URL: "x"}, 404, "riot_http_error"},
		{"wrapped riot 429", errors.Join(errors.New("ctx"), &riot.APIError{StatusCode: 429}), 429, "riot_http_error"},
		{"other", errors.New("boom"), 500, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			status, payload := ErrorResponse(tt.err)
			writeJSON(rec, status, payload)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decode(t, rec)["error"]; got != tt.code {
				t.Errorf("error code = %v, want %s", got, tt.code)
			}
		})
	}
}

// End to end through the real Riot client against a fake upstream.
func TestServer_RiotErrorPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/riot/account/v1/accounts/by-riot-id/") {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"status":{"status_code":404}}`)
			return
		}
		t.Errorf("unexpected upstream call %s", r.URL.Path)
	}))
	defer upstream.Close()

	client, err := riot.NewClient("RGAPI-test", riot.WithBaseURL(upstream.URL), riot.WithRetry(0, time.Millisecond), riot.WithRateLimits(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(service.New(client, nil, nil, service.Options{}, nil)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api?action=getRecap&gameName=Nobody&tagLine=NA1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var m map[string]string
	json.NewDecoder(resp.Body).Decode(&m)
	if m["error"] != "riot_http_error" {
		t.Errorf("unexpected payload %v", m)
	}

	resp2, err := http.Get(srv.URL + "/api?action=health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var h service.HealthResult
	json.NewDecoder(resp2.Body).Decode(&h)
	if !h.OK || h.Platform != "na1" {
		t.Errorf("unexpected health %+v", h)
	}
}
