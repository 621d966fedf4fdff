package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"macro-risk-alerts/internal/rules"
)

const (
	fxPath       = "/api/fx/rates"
	yieldsPath   = "/api/yields/curve"
	creditPath   = "/api/credit/spreads"
	economicPath = "/api/calendar/releases"
	newsPath     = "/api/news/tagged"
)

// Options parameterise the data-service client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client reads detector snapshots from the dashboard data service over HTTP.
// It implements every provider interface.
type Client struct {
	opts    Options
	client  *http.Client
	baseURL string
	logger  zerolog.Logger
}

// NewClient constructs a data-service client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		opts:    opts,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  logger.With().Str("component", "feed_client").Logger(),
	}
}

// FetchFX retrieves the latest FX pair stats.
func (c *Client) FetchFX(ctx context.Context) (rules.FXSnapshot, error) {
	var snapshot rules.FXSnapshot
	if err := c.getJSON(ctx, fxPath, &snapshot); err != nil {
		return nil, fmt.Errorf("fetch fx snapshot: %w", err)
	}
	return snapshot, nil
}

// FetchYields retrieves the latest treasury yield curve.
func (c *Client) FetchYields(ctx context.Context) (rules.YieldCurve, error) {
	var curve rules.YieldCurve
	if err := c.getJSON(ctx, yieldsPath, &curve); err != nil {
		return nil, fmt.Errorf("fetch yield curve: %w", err)
	}
	return curve, nil
}

// FetchCredit retrieves the latest credit spread stats.
func (c *Client) FetchCredit(ctx context.Context) (rules.CreditSnapshot, error) {
	var snapshot rules.CreditSnapshot
	if err := c.getJSON(ctx, creditPath, &snapshot); err != nil {
		return nil, fmt.Errorf("fetch credit snapshot: %w", err)
	}
	return snapshot, nil
}

// FetchEconomic retrieves recently published economic releases.
func (c *Client) FetchEconomic(ctx context.Context) ([]rules.EconomicRelease, error) {
	var releases []rules.EconomicRelease
	if err := c.getJSON(ctx, economicPath, &releases); err != nil {
		return nil, fmt.Errorf("fetch economic releases: %w", err)
	}
	return releases, nil
}

// FetchNews retrieves recent tagged headlines.
func (c *Client) FetchNews(ctx context.Context) ([]rules.NewsArticle, error) {
	var articles []rules.NewsArticle
	if err := c.getJSON(ctx, newsPath, &articles); err != nil {
		return nil, fmt.Errorf("fetch news articles: %w", err)
	}
	return articles, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("feed base URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	return json.Unmarshal(payload, out)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Detail != "" {
			return fmt.Errorf("feed api error (%d): %s", status, apiErr.Detail)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("feed api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("feed api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("feed api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("feed api error (%d)", status)
}

var (
	_ FXProvider       = (*Client)(nil)
	_ YieldProvider    = (*Client)(nil)
	_ CreditProvider   = (*Client)(nil)
	_ EconomicProvider = (*Client)(nil)
	_ NewsProvider     = (*Client)(nil)
)
