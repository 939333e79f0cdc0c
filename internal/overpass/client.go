// Package overpass fetches map data addresses from an Overpass API endpoint.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/at-addrcompare/internal/dataset"
	"github.com/at-addrcompare/internal/errors"
	"github.com/at-addrcompare/internal/logging"
)

// DefaultURL is the public Overpass API interpreter.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// TagGKZ carries the Austrian municipality code on boundary relations.
const TagGKZ = "ref:at:gkz"

// Response is the decoded JSON answer of the interpreter. Elements is empty
// when the answer had no elements key.
type Response struct {
	Remark   string            `json:"remark,omitempty"`
	Elements []dataset.Element `json:"elements"`
}

// Client talks to one Overpass interpreter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	// Timeout is passed to the server as the query timeout; the HTTP client
	// waits a little longer.
	Timeout    time.Duration
	RateLimit  rate.Limit
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// NewClient creates a Client. Zero config values fall back to the public
// endpoint, a 25 second timeout and one request per second.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultURL
	}
	if config.Timeout == 0 {
		config.Timeout = 25 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(time.Second)
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout + 10*time.Second}
	}
	logger := logging.Default()
	if config.Logger != nil {
		logger = config.Logger
	}

	return &Client{
		baseURL:    config.BaseURL,
		httpClient: config.HTTPClient,
		timeout:    config.Timeout,
		limiter:    rate.NewLimiter(config.RateLimit, 1),
		logger:     logger.With().Str("component", "overpass").Logger(),
	}
}

// Query runs an Overpass QL statement list. The [out:json] settings and the
// output statement are added by Query.
func (c *Client) Query(ctx context.Context, statements string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("[out:json][timeout:%d];%s out body;", int(c.timeout.Seconds()), statements)
	c.logger.Debug().Str("query", q).Msg("sending query")

	form := url.Values{"data": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapAPIError(c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewAPIError(c.baseURL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.WrapAPIError(c.baseURL, fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Debug().
		Int("elements", len(out.Elements)).
		Dur("took", time.Since(start)).
		Msg("query answered")
	if out.Remark != "" {
		c.logger.Warn().Str("remark", out.Remark).Msg("server remark")
	}
	return &out, nil
}

// ResolveGKZ looks up the municipality code of the municipality called name.
func (c *Client) ResolveGKZ(ctx context.Context, name string) (int, error) {
	resp, err := c.Query(ctx, BoundaryQuery(name))
	if err != nil {
		return 0, err
	}
	if len(resp.Elements) == 0 {
		return 0, errors.NewNotFoundError("municipality", name)
	}

	raw, ok := resp.Elements[0].Tags[TagGKZ]
	if !ok {
		return 0, errors.NewNotFoundError("municipality code of", name)
	}
	gkz, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.NewValidationError(TagGKZ, raw, "not a number")
	}
	return gkz, nil
}

// FetchAddresses returns every element carrying a house number or an
// interpolation within municipality gkz, plus the nodes of those ways so
// interpolation endpoints resolve.
func (c *Client) FetchAddresses(ctx context.Context, gkz int) ([]dataset.Element, error) {
	resp, err := c.Query(ctx, AddressQuery(gkz))
	if err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

// BoundaryQuery selects the municipality boundary relation named name.
func BoundaryQuery(name string) string {
	return fmt.Sprintf(`relation["type"="boundary"]["admin_level"="8"]["name"="%s"];`, escape(name))
}

// AddressQuery selects address-bearing elements within municipality gkz.
func AddressQuery(gkz int) string {
	return fmt.Sprintf(`area["type"="boundary"]["admin_level"="8"]["%s"="%d"]->.searchArea;`+
		`(node["addr:housenumber"](area.searchArea);`+
		`way["addr:housenumber"](area.searchArea);`+
		`way["addr:interpolation"](area.searchArea););`+
		`(._;node(w););`, TagGKZ, gkz)
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
