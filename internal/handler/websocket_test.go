package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scanview/frontend/internal/model"
)

func startHub(t *testing.T, origins []string, setup ...func(*Hub)) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(origins, slog.New(slog.DiscardHandler))
	for _, fn := range setup {
		fn(hub)
	}
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("page"))
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessages reads one frame and splits it into its batched messages.
func readMessages(t *testing.T, conn *websocket.Conn, wait time.Duration) ([]Message, error) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(wait))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var out []Message
	for _, line := range strings.Split(string(data), "\n") {
		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decoding %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubPushesHistoryToItsPageOnly(t *testing.T) {
	hub, url := startHub(t, nil)

	a := dial(t, url+"?page=a", nil)
	b := dial(t, url+"?page=b", nil)
	for _, conn := range []*websocket.Conn{a, b} {
		msgs, err := readMessages(t, conn, 2*time.Second)
		if err != nil || msgs[0].Type != "connected" {
			t.Fatalf("welcome = %+v, %v", msgs, err)
		}
	}
	waitForClients(t, hub, 2)

	hub.PublishHistory("a", model.HistoryEntry{ID: "1", URL: "http://example.com", RiskLevel: model.RiskHigh})

	msgs, err := readMessages(t, a, 2*time.Second)
	if err != nil {
		t.Fatalf("reading page a: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != "history" {
		t.Fatalf("page a got %+v", msgs)
	}
	entry, _ := msgs[0].Data.(map[string]any)
	if entry["url"] != "http://example.com" || entry["risk_level"] != "High" {
		t.Errorf("entry = %v", entry)
	}

	if msgs, err := readMessages(t, b, 100*time.Millisecond); err == nil {
		t.Errorf("page b got %+v", msgs)
	}
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	_, url := startHub(t, []string{"http://localhost:8082"})

	header := http.Header{"Origin": {"http://evil.example"}}
	if _, resp, err := websocket.DefaultDialer.Dial(url+"?page=a", header); err == nil {
		t.Fatal("dial from a foreign origin succeeded")
	} else if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v", err)
	}

	dial(t, url+"?page=a", http.Header{"Origin": {"http://localhost:8082"}})
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub, url := startHub(t, nil)

	conn := dial(t, url+"?page=a", nil)
	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubReportsLiveClients(t *testing.T) {
	alive := make(chan string, 16)
	_, url := startHub(t, nil, func(h *Hub) {
		h.pingPeriod = 20 * time.Millisecond
		h.OnAlive(func(pageID string) {
			select {
			case alive <- pageID:
			default:
			}
		})
	})

	conn := dial(t, url+"?page=a", nil)
	// Reading lets the client answer pings.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// One report on connect, then one per answered ping.
	for i := 0; i < 3; i++ {
		select {
		case id := <-alive:
			if id != "a" {
				t.Fatalf("alive page = %q, want a", id)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("got %d alive reports, want 3", i)
		}
	}
}
