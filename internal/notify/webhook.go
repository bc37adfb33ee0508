// Package notify posts crawl reports to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

const (
	colorRed   = 15158332 // 0xE74C3C
	colorGreen = 5763719  // 0x57F287

	defaultWebhookTimeout = 10 * time.Second
	maxRetries            = 3
)

// Payload is a Discord webhook message.
type Payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// CrawlReport is what a finished crawl tells the channel.
type CrawlReport struct {
	Seed             string
	PlayersProcessed int64
	PlayersSkipped   int64
	MatchesWritten   int64
	MatchesFailed    int64
	Indexed          int
	Elapsed          time.Duration
	// Err is the reason the crawl stopped early, if any.
	Err error
	// KeyRejected marks Err as a rejected Riot API key.
	KeyRejected bool
}

// NewCrawlPayload renders r as a single embed. Failed crawls are red and
// mention @here when the API key needs replacing.
func NewCrawlPayload(r CrawlReport) Payload {
	embed := Embed{
		Title: "Crawl finished",
		Color: colorGreen,
		Fields: []EmbedField{
			{Name: "Matches", Value: formatNumber(r.MatchesWritten), Inline: true},
			{Name: "Players", Value: formatNumber(r.PlayersProcessed), Inline: true},
			{Name: "Runtime", Value: formatDuration(r.Elapsed), Inline: true},
		},
		Footer: &EmbedFooter{Text: "Seed " + r.Seed},
	}
	if r.PlayersSkipped > 0 {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Below rank gate", Value: formatNumber(r.PlayersSkipped), Inline: true})
	}
	if r.MatchesFailed > 0 {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Failed fetches", Value: formatNumber(r.MatchesFailed), Inline: true})
	}
	if r.Indexed > 0 {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Lineups indexed", Value: formatNumber(int64(r.Indexed)), Inline: true})
	}

	p := Payload{}
	if r.Err != nil {
		embed.Title = "Crawl stopped"
		embed.Color = colorRed
		embed.Description = r.Err.Error()
		if r.KeyRejected {
			p.Content = "@here Riot API key rejected"
			embed.Footer.Text = "Replace RIOT_API_KEY and rerun from seed " + r.Seed
		}
	}
	p.Embeds = []Embed{embed}
	return p
}

// Webhook posts payloads to one Discord webhook URL.
type Webhook struct {
	url        string
	httpClient *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
	}
}

// SendCrawlReport posts r.
func (w *Webhook) SendCrawlReport(ctx context.Context, r CrawlReport) error {
	return w.Send(ctx, NewCrawlPayload(r))
}

// Send posts payload, waiting out 429 responses up to maxRetries times.
func (w *Webhook) Send(ctx context.Context, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("webhook request: %w", err)
		}
		resp.Body.Close()

		// Discord answers 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}

		wait := time.Second
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			wait = time.Duration(secs) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("webhook still rate limited after %d attempts", maxRetries)
}

// formatNumber groups thousands with commas (47832 -> "47,832").
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 1000 {
		return s
	}
	var b bytes.Buffer
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatDuration renders d as "18h 32m".
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
