package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/qrcatalog/internal/catalog"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string, want int) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == want }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestPublishReachesAllClients(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, hub, url, 1)
	b := dial(t, hub, url, 2)

	hub.Publish(catalog.Event{Type: catalog.EventProductDeleted, ProductID: "100001", Time: time.Unix(0, 0).UTC()})

	for _, conn := range []*gws.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got catalog.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, catalog.EventProductDeleted, got.Type)
		assert.Equal(t, "100001", got.ProductID)
	}
}

func TestIdentifyAndPing(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, 1)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "IDENTIFY", "label": "scanner-1", "msgId": "m1"}))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "ACK", ack["type"])
	assert.Equal(t, "m1", ack["msgId"])
	assert.True(t, strings.HasPrefix(ack["clientId"], "web_"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "PING", "msgId": "m2"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "PONG", pong["type"])
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, 1)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

var _ catalog.Notifier = (*Hub)(nil)

func TestSendToDroppedClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	// nobody drains this client, so the first broadcast it cannot take drops it
	c := &Client{hub: hub, send: make(chan []byte, 1), ClientID: "stuck"}
	hub.register <- c

	stop := make(chan struct{})
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for {
			select {
			case <-stop:
				return
			default:
				hub.SendToClient("stuck", map[string]string{"type": "PONG"})
			}
		}
	}()

	for i := 0; i < 50; i++ {
		hub.Publish(catalog.Event{Type: catalog.EventProductScanned, ProductID: "100001"})
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
	close(stop)
	<-sent

	assert.False(t, hub.SendToClient("stuck", map[string]string{"type": "PONG"}))
}
