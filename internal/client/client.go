// Package client retrieves stock listings from the remote screener service.
//
// The service exposes two read operations: the full universe (GET /stocks)
// and a filtered subset (POST /filter with an opaque query string). Both
// negotiate their representation through the Accept header. ListAll and
// ListFiltered always ask for the structured JSON list; Document asks for
// the rendered HTML page and is meant for a rendering layer only.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/stock"
	"golang.org/x/time/rate"
)

const (
	mimeJSON = "application/json"
	mimeHTML = "text/html"

	// defaultMaxBody bounds how much of a response body is read.
	defaultMaxBody = 8 << 20
)

// Representation selects which shape the service should answer with.
type Representation int

const (
	Structured Representation = iota // JSON array of records
	Rendered                         // HTML document
)

func (r Representation) accept() string {
	if r == Rendered {
		return mimeHTML
	}
	return mimeJSON
}

// Result is the outcome of Fetch. Exactly one of Stocks or Markup is
// meaningful, as reported by IsStructured.
type Result struct {
	ContentType string
	Stocks      []stock.Record
	Markup      string

	rep Representation
}

// IsStructured reports whether the result carries a parsed list.
func (r Result) IsStructured() bool { return r.rep == Structured }

// Config configures a Client. BaseURL is required.
type Config struct {
	BaseURL           string
	Timeout           time.Duration // per request; 0 means 30s
	RequestsPerSecond float64       // outgoing pacing; 0 means unlimited
	HTTPClient        *http.Client  // optional, overrides Timeout
	MaxBodyBytes      int64         // larger bodies are malformed; 0 means 8 MiB
}

// Client talks to one screener service. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	maxBody int64
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
		maxBody: maxBody,
	}
}

// BaseURL returns the service address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListAll returns the full stock universe in service order.
func (c *Client) ListAll(ctx context.Context) ([]stock.Record, error) {
	res, err := c.Fetch(ctx, "", Structured)
	if err != nil {
		return nil, err
	}
	return res.Stocks, nil
}

// ListFiltered submits query verbatim and returns the subset the service
// selects. The query is never parsed here.
func (c *Client) ListFiltered(ctx context.Context, query string) ([]stock.Record, error) {
	res, err := c.fetch(ctx, http.MethodPost, "/filter", query, Structured)
	if err != nil {
		return nil, err
	}
	return res.Stocks, nil
}

// Document returns the service's rendered HTML page for query
// ("" for the unfiltered listing).
func (c *Client) Document(ctx context.Context, query string) (string, error) {
	res, err := c.Fetch(ctx, query, Rendered)
	if err != nil {
		return "", err
	}
	return res.Markup, nil
}

// Fetch retrieves the listing for query in the requested representation.
// An empty query selects the unfiltered listing.
func (c *Client) Fetch(ctx context.Context, query string, rep Representation) (Result, error) {
	if query == "" {
		return c.fetch(ctx, http.MethodGet, "/stocks", "", rep)
	}
	return c.fetch(ctx, http.MethodPost, "/filter", query, rep)
}

type filterRequest struct {
	Query string `json:"query"`
}

// encodeFilter encodes the POST body without HTML escaping so operators
// such as < and > travel unmodified.
func encodeFilter(query string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(filterRequest{Query: query}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) fetch(ctx context.Context, method, path, query string, rep Representation) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if method == http.MethodPost {
		payload, err := encodeFilter(query)
		if err != nil {
			return Result{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", rep.accept())
	if body != nil {
		req.Header.Set("Content-Type", mimeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		logging.Warn("stock service unreachable", "url", req.URL.String(), "error", err)
		return Result{}, &ConnectivityError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return Result{}, &ConnectivityError{BaseURL: c.baseURL, Err: fmt.Errorf("read response: %w", err)}
	}

	logging.Debug("stock service response",
		"method", method, "path", path, "status", resp.StatusCode,
		"bytes", len(raw), "dur", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &TransportError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if int64(len(raw)) > c.maxBody {
		return Result{}, &MalformedResponseError{
			ContentType: resp.Header.Get("Content-Type"),
			Err:         fmt.Errorf("response exceeds %d bytes", c.maxBody),
		}
	}

	return decode(resp.Header.Get("Content-Type"), raw, rep)
}

// decode interprets a 2xx body under the requested representation.
func decode(contentType string, raw []byte, rep Representation) (Result, error) {
	res := Result{ContentType: contentType, rep: rep}
	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return Result{}, &MalformedResponseError{ContentType: contentType, Err: err}
		}
		mediaType = mt
	}

	switch rep {
	case Rendered:
		if mediaType != mimeHTML {
			return Result{}, &MalformedResponseError{
				ContentType: contentType,
				Err:         errors.New("expected an HTML document"),
			}
		}
		res.Markup = string(raw)
		return res, nil

	default:
		if mediaType != "" && mediaType != mimeJSON && !strings.HasSuffix(mediaType, "+json") {
			return Result{}, &MalformedResponseError{
				ContentType: contentType,
				Err:         errors.New("expected a JSON list"),
			}
		}
		var stocks []stock.Record
		if err := json.Unmarshal(raw, &stocks); err != nil {
			return Result{}, &MalformedResponseError{ContentType: contentType, Err: err}
		}
		for i, s := range stocks {
			if strings.TrimSpace(s.Name) == "" {
				return Result{}, &MalformedResponseError{
					ContentType: contentType,
					Err:         fmt.Errorf("record %d has no %q", i, stock.NameKey),
				}
			}
		}
		if stocks == nil {
			stocks = []stock.Record{}
		}
		res.Stocks = stocks
		return res, nil
	}
}
