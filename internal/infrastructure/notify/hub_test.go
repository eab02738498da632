package notify

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkevin1491/fyp/internal/ports"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) pendingCountMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg pendingCountMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal event: %v; raw=%q", err, string(raw))
	}
	return msg
}

func waitSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Subscribers() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Subscribers() = %d, want %d", hub.Subscribers(), want)
}

func TestHubBroadcastsPendingCount(t *testing.T) {
	hub := NewHub(context.Background(), nil)
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	first := dialHub(t, server)
	second := dialHub(t, server)
	waitSubscribers(t, hub, 2)

	hub.PublishPendingCount(context.Background(), 7)

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readEvent(t, conn)
		if msg.Event != PendingCountEvent {
			t.Fatalf("event = %q, want %q", msg.Event, PendingCountEvent)
		}
		if msg.Count != 7 {
			t.Fatalf("count = %d, want 7", msg.Count)
		}
	}
}

func TestHubSendsLastCountOnConnect(t *testing.T) {
	hub := NewHub(context.Background(), nil)
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	hub.PublishPendingCount(context.Background(), 3)
	hub.PublishPendingCount(context.Background(), 4)

	conn := dialHub(t, server)
	msg := readEvent(t, conn)
	if msg.Count != 4 {
		t.Fatalf("count on connect = %d, want 4", msg.Count)
	}
}

func TestHubDropsClosedSubscriber(t *testing.T) {
	hub := NewHub(context.Background(), nil)
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	conn := dialHub(t, server)
	waitSubscribers(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitSubscribers(t, hub, 0)

	hub.PublishPendingCount(context.Background(), 1)
}

type countingNotifier struct {
	counts []int64
}

func (n *countingNotifier) PublishPendingCount(_ context.Context, count int64) {
	n.counts = append(n.counts, count)
}

func TestFanoutDeliversToEveryNotifier(t *testing.T) {
	t.Parallel()

	a := &countingNotifier{}
	b := &countingNotifier{}
	fanout := NewFanout(a, nil, b, LogNotifier{})

	fanout.PublishPendingCount(context.Background(), 5)
	fanout.PublishPendingCount(context.Background(), 6)

	for name, n := range map[string]*countingNotifier{"a": a, "b": b} {
		if len(n.counts) != 2 || n.counts[0] != 5 || n.counts[1] != 6 {
			t.Fatalf("notifier %s counts = %v, want [5 6]", name, n.counts)
		}
	}
}

func TestEncodePendingCount(t *testing.T) {
	t.Parallel()

	got := string(encodePendingCount(12))
	want := `{"event":"update_pending_approvals_count","count":12}`
	if got != want {
		t.Fatalf("encodePendingCount() = %s, want %s", got, want)
	}
}

func TestNATSPublisherWithoutConnectionIsNoop(t *testing.T) {
	t.Parallel()

	var n ports.Notifier = NewNATSPublisher(nil, "")
	n.PublishPendingCount(context.Background(), 2)

	pub := n.(*NATSPublisher)
	if pub.subject != DefaultNATSSubject {
		t.Fatalf("subject = %q, want %q", pub.subject, DefaultNATSSubject)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestConnectNATSRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := ConnectNATS(context.Background(), "  ", ""); err == nil {
		t.Fatal("ConnectNATS() error = nil, want non-nil")
	}
}
