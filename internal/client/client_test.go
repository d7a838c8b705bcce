package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/screener/internal/stock"
)

const twoStocks = `[
  {"Stock Name":"Alpha","Market Capitalization":500,"ROE":12.5},
  {"Stock Name":"Beta","Market Capitalization":250,"P/E Ratio":null}
]`

func newTestClient(url string) *Client {
	return New(Config{BaseURL: url, Timeout: 2 * time.Second})
}

func TestListAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/stocks" {
			t.Errorf("path = %q, want /stocks", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(twoStocks))
	}))
	defer server.Close()

	stocks, err := newTestClient(server.URL).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(stocks) != 2 {
		t.Fatalf("got %d stocks, want 2", len(stocks))
	}
	if stocks[0].Name != "Alpha" || stocks[1].Name != "Beta" {
		t.Errorf("order not preserved: %q, %q", stocks[0].Name, stocks[1].Name)
	}
	if v, ok := stocks[0].Value(stock.ROE); !ok || v != 12.5 {
		t.Errorf("Alpha ROE = (%v, %v), want (12.5, true)", v, ok)
	}
	if _, ok := stocks[1].Value(stock.PERatio); ok {
		t.Error("Beta P/E Ratio should be unknown")
	}
}

func TestListAllEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	stocks, err := newTestClient(server.URL).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if stocks == nil || len(stocks) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", stocks)
	}
}

func TestListFilteredSendsQueryVerbatim(t *testing.T) {
	queries := []string{
		"ROE > 10",
		"Market Capitalization >= 300",
		"ROE > 10 AND Debt/Equity Ratio <= 0.5",
		"P/E Ratio < 15 AND Dividend Yield = 2",
		`weird "quoted" & <tagged>`,
		"",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			var rawBody []byte
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/filter" {
					t.Errorf("got %s %s, want POST /filter", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("Content-Type = %q", got)
				}
				rawBody, _ = io.ReadAll(r.Body)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			if _, err := newTestClient(server.URL).ListFiltered(context.Background(), q); err != nil {
				t.Fatalf("ListFiltered() error: %v", err)
			}

			var body map[string]string
			if err := json.Unmarshal(rawBody, &body); err != nil {
				t.Fatalf("decode body %q: %v", rawBody, err)
			}
			if body["query"] != q {
				t.Errorf("query = %q, want %q", body["query"], q)
			}
			for _, esc := range []string{`\u003c`, `\u003e`, `\u0026`} {
				if strings.Contains(string(rawBody), esc) {
					t.Errorf("body %q contains HTML escape %s", rawBody, esc)
				}
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("invalid syntax near >\n"))
	}))
	defer server.Close()

	stocks, err := newTestClient(server.URL).ListFiltered(context.Background(), "ROE > 10")
	if stocks != nil {
		t.Errorf("expected no list on failure, got %v", stocks)
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", te.Status)
	}
	if te.Body != "invalid syntax near >" {
		t.Errorf("Body = %q", te.Body)
	}
	if Retryable(err) {
		t.Error("transport errors should not be retryable")
	}
	if msg := Message(err); !strings.Contains(msg, "invalid syntax near >") {
		t.Errorf("Message() = %q, want body detail", msg)
	}
}

func TestConnectivityError(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = newTestClient("http://" + addr).ListAll(context.Background())

	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
	var te *TransportError
	if errors.As(err, &te) {
		t.Error("connectivity failure must not look like a TransportError")
	}
	if !Retryable(err) {
		t.Error("connectivity errors should be retryable")
	}
	if msg := Message(err); !strings.Contains(msg, "Could not reach") {
		t.Errorf("Message() = %q, want generic connectivity text", msg)
	}
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"invalid json", "application/json", `[{"Stock Name":`},
		{"not a list", "application/json", `{"error":"x"}`},
		{"html instead of json", "text/html", `<html></html>`},
		{"missing name", "application/json", `[{"ROE":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).ListAll(context.Background())
			var me *MalformedResponseError
			if !errors.As(err, &me) {
				t.Fatalf("expected MalformedResponseError, got %T: %v", err, err)
			}
			if !strings.HasPrefix(Message(err), "Unexpected response") {
				t.Errorf("Message() = %q", Message(err))
			}
		})
	}
}

func TestFetchRendered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/html" {
			t.Errorf("Accept = %q, want text/html", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<table><tr><td>Alpha</td></tr></table>"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	res, err := c.Fetch(context.Background(), "ROE > 1", Rendered)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.IsStructured() {
		t.Error("rendered result reported as structured")
	}
	if res.Stocks != nil {
		t.Error("rendered result must not carry a list")
	}
	if !strings.Contains(res.Markup, "Alpha") {
		t.Errorf("Markup = %q", res.Markup)
	}

	doc, err := c.Document(context.Background(), "")
	if err != nil || doc == "" {
		t.Fatalf("Document() = (%q, %v)", doc, err)
	}
}

func TestFetchRenderedRejectsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(twoStocks))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Document(context.Background(), "")
	var me *MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %T: %v", err, err)
	}
}

func TestFetchCancelled(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(server.URL).ListAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if Retryable(err) {
		t.Error("cancellation is not a connectivity failure")
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stocks" {
			t.Errorf("path = %q, want /stocks", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL + "/"})
	if c.BaseURL() != server.URL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), server.URL)
	}
	if _, err := c.ListAll(context.Background()); err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
}

func TestTimeoutIsConnectivityError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := New(Config{BaseURL: server.URL, Timeout: 100 * time.Millisecond})
	_, err := c.ListFiltered(context.Background(), "ROE > 1")

	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
	if !Retryable(err) {
		t.Error("timeouts should be retryable")
	}
	if msg := Message(err); !strings.Contains(msg, "Could not reach") {
		t.Errorf("Message() = %q, want generic connectivity text", msg)
	}
}

func TestRequestsArePaced(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Timeout: 2 * time.Second, RequestsPerSecond: 5})

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := c.ListAll(context.Background()); err != nil {
			t.Fatalf("ListAll() #%d error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("two requests at 5 rps took %v, want about 200ms", elapsed)
	}

	// The next token is ~200ms away; a shorter deadline fails before any
	// request is sent.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.ListAll(ctx)
	if err == nil {
		t.Fatal("expected an error when the deadline is shorter than the pacing delay")
	}
	var ce *ConnectivityError
	if errors.As(err, &ce) || Retryable(err) {
		t.Errorf("pacing failure classified as connectivity: %v", err)
	}
	if n := atomic.LoadInt64(&calls); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestOversizedBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(twoStocks))
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, MaxBodyBytes: 16})
	_, err := c.ListAll(context.Background())

	var me *MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "response exceeds 16 bytes") {
		t.Errorf("error = %v", err)
	}

	exact := New(Config{BaseURL: server.URL, MaxBodyBytes: int64(len(twoStocks))})
	if _, err := exact.ListAll(context.Background()); err != nil {
		t.Errorf("body at the limit rejected: %v", err)
	}
}
