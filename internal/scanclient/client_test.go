package scanclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scanview/frontend/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second, testLogger())
}

const exampleBody = `{"url":"http://example.com","risk_level":"Medium","tips":["Use HTTPS"],"vulnerabilities":[{"type":"XSS","count":2,"details":["reflected"]}]}`

func TestScanSuccess(t *testing.T) {
	var gotBody model.ScanRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/scan" {
			t.Errorf("request = %s %s, want POST /scan", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, exampleBody)
	})

	got, err := c.Scan(context.Background(), "  http://example.com ")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if gotBody.URL != "http://example.com" {
		t.Errorf("sent url = %q", gotBody.URL)
	}
	if got.RiskLevel != model.RiskMedium || len(got.Vulnerabilities) != 1 || got.Vulnerabilities[0].Count != 2 {
		t.Errorf("result = %+v", got)
	}
}

func TestScanDetailMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		alert  string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"bad url"}`, "Error: bad url"},
		{"validation issues", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","url"],"msg":"invalid or missing URL scheme","type":"url_parsing"}]}`, "Error: invalid or missing URL scheme"},
		{"no detail", http.StatusTooManyRequests, `{"error":"Rate limit exceeded: 5 per 1 minute"}`, "Error: Scan failed"},
		{"empty body", http.StatusInternalServerError, ``, "Error: Scan failed"},
		{"null detail", http.StatusBadGateway, `{"detail":null}`, "Error: Scan failed"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Error: Scan failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			_, err := c.Scan(context.Background(), "http://example.com")
			var se *SubmissionError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SubmissionError", err)
			}
			if se.Alert() != tc.alert {
				t.Errorf("alert = %q, want %q", se.Alert(), tc.alert)
			}
			if se.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", se.StatusCode, tc.status)
			}
		})
	}
}

func TestScanRejectsInvalidResult(t *testing.T) {
	cases := map[string]string{
		"unknown risk":    `{"url":"http://x","risk_level":"Critical","tips":[],"vulnerabilities":[]}`,
		"missing url":     `{"risk_level":"Low","tips":[],"vulnerabilities":[]}`,
		"negative count":  `{"url":"http://x","risk_level":"Low","vulnerabilities":[{"type":"XSS","count":-1}]}`,
		"missing type":    `{"url":"http://x","risk_level":"Low","vulnerabilities":[{"count":1}]}`,
		"malformed json":  `{"url":`,
		"wrong tips type": `{"url":"http://x","risk_level":"Low","tips":"Use HTTPS"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			_, err := c.Scan(context.Background(), "http://x")
			var se *SubmissionError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SubmissionError", err)
			}
			if !strings.HasPrefix(se.Message, "Invalid scan result") {
				t.Errorf("message = %q", se.Message)
			}
		})
	}
}

func TestScanEmptyURLDoesNotCallService(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, err := c.Scan(context.Background(), "   ")
	if AlertMessage(err) != "Error: URL is required" {
		t.Fatalf("alert = %q", AlertMessage(err))
	}
	if called {
		t.Error("scan service was called for an empty URL")
	}
}

func TestScanTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, testLogger())
	_, err := c.Scan(context.Background(), "http://example.com")
	if AlertMessage(err) != "Error: Scan failed" {
		t.Fatalf("alert = %q", AlertMessage(err))
	}
	var se *SubmissionError
	if !errors.As(err, &se) || se.Err == nil {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestScanContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, exampleBody)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Scan(ctx, "http://example.com"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/history" {
			t.Errorf("request = %s %s, want GET /history", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"history":[
			{"url":"http://old.example","risk_level":"Low","tips":[],"vulnerabilities":[]},
			{"url":"http://broken.example","risk_level":"Unknown","tips":[],"vulnerabilities":[]},
			{"url":"http://new.example","risk_level":"High","tips":[],"vulnerabilities":[]}
		]}`)
	})

	got, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].URL != "http://old.example" || got[1].URL != "http://new.example" {
		t.Errorf("order = %s, %s", got[0].URL, got[1].URL)
	}
}

func TestHistoryFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"history":`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h)
			_, err := c.History(context.Background())
			var he *HistoryLoadError
			if !errors.As(err, &he) {
				t.Fatalf("err = %v, want *HistoryLoadError", err)
			}
		})
	}
}

func TestAlertMessageForeignError(t *testing.T) {
	if got := AlertMessage(errors.New("boom")); got != "Error: Scan failed" {
		t.Errorf("alert = %q", got)
	}
}
