// Package api exposes the service actions over a single JSON route.
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// Actions runs one named action. *service.Service satisfies it.
type Actions interface {
	Do(ctx context.Context, p service.Params) (any, error)
}

// Server is the HTTP boundary.
type Server struct {
	actions     Actions
	allowOrigin string
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowOrigin sets Access-Control-Allow-Origin.
func WithAllowOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.allowOrigin = origin
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer wraps actions.
func NewServer(actions Actions, opts ...Option) *Server {
	s := &Server{
		actions:     actions,
		allowOrigin: "*",
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler mounts the action route at "/" and "/api".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api", s)
	mux.Handle("/", s)
	return mux
}

// flexInt accepts a JSON number or a numeric string. Anything else is 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.Atoi(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}

type requestBody struct {
	Action           string        `json:"action"`
	GameName         string        `json:"gameName"`
	TagLine          string        `json:"tagLine"`
	PUUID            string        `json:"puuid"`
	MatchCount       flexInt       `json:"matchCount"`
	MatchID          string        `json:"matchId"`
	SelectedMatchIDs []string      `json:"selectedMatchIds"`
	TierBump         flexInt       `json:"tierBump"`
	SampleCap        flexInt       `json:"samplePerSignature"`
	Lane             string        `json:"lane"`
	Lineup           lineup.Roster `json:"lineup"`
	QueueID          flexInt       `json:"queue_id"`
	DurationS        flexInt       `json:"duration_s"`
}

func (b requestBody) params() service.Params {
	return service.Params{
		Action:           b.Action,
		GameName:         b.GameName,
		TagLine:          b.TagLine,
		PUUID:            b.PUUID,
		MatchCount:       int(b.MatchCount),
		MatchID:          b.MatchID,
		SelectedMatchIDs: b.SelectedMatchIDs,
		TierBump:         int(b.TierBump),
		SampleCap:        int(b.SampleCap),
		Lane:             b.Lane,
		Lineup:           b.Lineup,
		QueueID:          int(b.QueueID),
		DurationS:        int(b.DurationS),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", s.allowOrigin)
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("X-Request-ID", reqID)

	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
		return
	}

	p, err := parseParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body", "detail": err.Error()})
		return
	}

	out, err := s.actions.Do(r.Context(), p)
	status := http.StatusOK
	if err != nil {
		var payload any
		status, payload = ErrorResponse(err)
		writeJSON(w, status, payload)
	} else {
		writeJSON(w, status, out)
	}

	logFn := s.logger.Info
	if status >= 500 {
		logFn = s.logger.Error
	}
	logFn("request", "id", reqID, "action", p.Action, "status", status,
		"duration_ms", time.Since(start).Milliseconds(), "err", err)
}

// parseParams merges the JSON body with the query string; query values win.
func parseParams(r *http.Request) (service.Params, error) {
	var body requestBody
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return service.Params{}, err
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				return service.Params{}, err
			}
		}
	}
	p := body.params()

	q := r.URL.Query()
	override := func(dst *string, key string) {
		if v := q.Get(key); v != "" {
			*dst = v
		}
	}
	override(&p.Action, "action")
	override(&p.GameName, "gameName")
	override(&p.TagLine, "tagLine")
	override(&p.PUUID, "puuid")
	override(&p.MatchID, "matchId")
	override(&p.Lane, "lane")
	if v := q.Get("matchCount"); v != "" {
		n, _ := strconv.Atoi(v)
		p.MatchCount = n
	}
	return p, nil
}

// ErrorResponse maps err onto a status code and JSON payload.
func ErrorResponse(err error) (int, any) {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Status, se
	}
	if code := riot.StatusCode(err); code > 0 {
		return code, map[string]string{"error": "riot_http_error", "detail": err.Error()}
	}
	return http.StatusInternalServerError, map[string]string{"error": "server_error", "detail": err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("encode response failed", "err", err)
	}
}
