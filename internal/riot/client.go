package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultRoutingRegion = "americas"

	// Rate limits for dev key (using conservative values to be safe)
	requestsPerSecond = 15 // Actual: 20
	requestsPer2Min   = 90 // Actual: 100

	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	maxBackoff        = 10 * time.Second
)

var platformByRegion = map[string]string{
	"americas": "na1",
	"europe":   "euw1",
	"asia":     "kr",
	"sea":      "sg2",
}

// PlatformForRegion maps a routing region onto its default platform id.
func PlatformForRegion(region string) string {
	if p, ok := platformByRegion[region]; ok {
		return p
	}
	return "na1"
}

func regionalURL(host string) string {
	return "https://" + host + ".api.riotgames.com"
}

// Client is a rate-limited Riot API client
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	routingURL  string // account + match-v5
	platformURL string // summoner, league
	maxRetries  int
	backoff     time.Duration
	perSecond   int
	per2Min     int

	// Rate limiting
	windowMu    sync.Mutex
	shortWindow []time.Time // Requests in last second
	longWindow  []time.Time // Requests in last 2 minutes
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRegion sets the routing region and its default platform.
func WithRegion(routing string) ClientOption {
	return func(c *Client) {
		c.routingURL = regionalURL(routing)
		c.platformURL = regionalURL(PlatformForRegion(routing))
	}
}

// WithPlatform overrides the platform host (na1, euw1, kr...).
func WithPlatform(platform string) ClientOption {
	return func(c *Client) {
		if platform != "" {
			c.platformURL = regionalURL(platform)
		}
	}
}

// WithBaseURL points both routing and platform calls at one host (useful for testing)
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.routingURL = u
		c.platformURL = u
	}
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets how many times rate-limited or 5xx calls are retried and the
// initial backoff between attempts.
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithRateLimits overrides the per-second and per-two-minute request budgets.
func WithRateLimits(perSecond, per2Min int) ClientOption {
	return func(c *Client) {
		c.perSecond = perSecond
		c.per2Min = per2Min
	}
}

// WithLogger routes client diagnostics to logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Riot API client
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot api key not set")
	}

	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		routingURL:  regionalURL(DefaultRoutingRegion),
		platformURL: regionalURL(PlatformForRegion(DefaultRoutingRegion)),
		maxRetries:  defaultMaxRetries,
		backoff:     defaultBackoff,
		perSecond:   requestsPerSecond,
		per2Min:     requestsPer2Min,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// waitForRateLimit blocks until we can make another request or ctx is done
func (c *Client) waitForRateLimit(ctx context.Context) error {
	for {
		c.windowMu.Lock()

		now := time.Now()
		c.shortWindow = pruneBefore(c.shortWindow, now.Add(-time.Second))
		c.longWindow = pruneBefore(c.longWindow, now.Add(-2*time.Minute))

		var wait time.Duration
		switch {
		case c.perSecond > 0 && len(c.shortWindow) >= c.perSecond:
			wait = c.shortWindow[0].Add(time.Second).Sub(now) + 100*time.Millisecond
		case c.per2Min > 0 && len(c.longWindow) >= c.per2Min:
			wait = c.longWindow[0].Add(2*time.Minute).Sub(now) + 100*time.Millisecond
		default:
			c.shortWindow = append(c.shortWindow, now)
			c.longWindow = append(c.longWindow, now)
			c.windowMu.Unlock()
			return nil
		}
		c.windowMu.Unlock()

		c.logger.Debug("rate limit window full", "wait", wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

func pruneBefore(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// doRequest makes a rate-limited GET, retrying 429 and 5xx responses with
// exponential backoff. Retry-After is honoured when present.
func (c *Client) doRequest(ctx context.Context, rawURL string, result interface{}) error {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		err := c.doOnce(ctx, rawURL, result)
		if err == nil || !IsRetryable(err) || attempt >= c.maxRetries {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		wait := backoff
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		c.logger.Warn("retrying riot request", "url", rawURL, "attempt", attempt+1, "wait", wait, "err", err)
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *Client) doOnce(ctx context.Context, rawURL string, result interface{}) error {
	if err := c.waitForRateLimit(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, URL: rawURL}
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, rawURL, err)
	}
	return nil
}

// GetAccountByRiotID fetches account info by Riot ID (gameName#tagLine)
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.routingURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account AccountResponse
	if err := c.doRequest(ctx, u, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// MatchQuery narrows a match id listing. Zero values are left out of the query.
type MatchQuery struct {
	Start     int
	Count     int
	Queue     int
	StartTime int64 // epoch seconds
	EndTime   int64
}

func (q MatchQuery) encode() string {
	v := url.Values{}
	v.Set("start", strconv.Itoa(q.Start))
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	if q.Queue > 0 {
		v.Set("queue", strconv.Itoa(q.Queue))
	}
	if q.StartTime > 0 {
		v.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	}
	if q.EndTime > 0 {
		v.Set("endTime", strconv.FormatInt(q.EndTime, 10))
	}
	return v.Encode()
}

// GetMatchIDs lists match ids for a player
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, q MatchQuery) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.routingURL, url.PathEscape(puuid), q.encode())

	var matchIDs []string
	if err := c.doRequest(ctx, u, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// GetMatchHistory fetches ranked solo match IDs for a player
func (c *Client) GetMatchHistory(ctx context.Context, puuid string, count int) ([]string, error) {
	return c.GetMatchIDs(ctx, puuid, MatchQuery{Count: count, Queue: 420})
}

// GetMatch fetches match details
func (c *Client) GetMatch(ctx context.Context, matchID string) (*MatchResponse, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.routingURL, url.PathEscape(matchID))

	var match MatchResponse
	if err := c.doRequest(ctx, u, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetTimeline fetches match timeline
func (c *Client) GetTimeline(ctx context.Context, matchID string) (*TimelineResponse, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.routingURL, url.PathEscape(matchID))

	var timeline TimelineResponse
	if err := c.doRequest(ctx, u, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetSummonerByID fetches a summoner by encrypted summoner id
func (c *Client) GetSummonerByID(ctx context.Context, summonerID string) (*SummonerResponse, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/%s", c.platformURL, url.PathEscape(summonerID))

	var s SummonerResponse
	if err := c.doRequest(ctx, u, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetLeagueEntriesByPUUID fetches every ranked entry for a player
func (c *Client) GetLeagueEntriesByPUUID(ctx context.Context, puuid string) ([]LeagueEntryResponse, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformURL, url.PathEscape(puuid))

	var entries []LeagueEntryResponse
	if err := c.doRequest(ctx, u, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetLeagueEntries fetches one page of a tier/division ladder
func (c *Client) GetLeagueEntries(ctx context.Context, queue, tier, division string, page int) ([]LeagueEntryResponse, error) {
	u := fmt.Sprintf("%s/lol/league-exp/v4/entries/%s/%s/%s?page=%d",
		c.platformURL, queue, tier, division, page)

	var entries []LeagueEntryResponse
	if err := c.doRequest(ctx, u, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetSoloQueueRank returns the player's solo queue tier and division.
// hasRank is false when the player has no solo queue entry.
func (c *Client) GetSoloQueueRank(ctx context.Context, puuid string) (tier, division string, hasRank bool, err error) {
	entries, err := c.GetLeagueEntriesByPUUID(ctx, puuid)
	if err != nil {
		return "", "", false, err
	}
	for _, e := range entries {
		if e.QueueType == QueueSoloDuo {
			tier, division = PickSoloTier(entries)
			return tier, division, true, nil
		}
	}
	return "", "", false, nil
}
