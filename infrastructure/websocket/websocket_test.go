package websocket

import (
	"net"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveManager เปิด fiber app จริงบน loopback ที่ register ทุก connection เข้า manager
func serveManager(t *testing.T, m *WebSocketManager, userID uuid.UUID) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		m.RegisterClient(c, userID)
		defer m.UnregisterClient(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return "ws://" + ln.Addr().String() + "/ws"
}

func TestBroadcastDeliversToUser(t *testing.T) {
	m := NewWebSocketManager()
	t.Cleanup(m.Stop)

	userID := uuid.New()
	conn, _, err := fastws.DefaultDialer.Dial(serveManager(t, m, userID), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.GetTotalClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	m.BroadcastToUsers([]uuid.UUID{userID, userID}, "task.created", "hello")

	var msg Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "task.created", msg.Type)
	assert.Equal(t, "hello", msg.Data)
}

func TestStalledClientIsDropped(t *testing.T) {
	m := newWebSocketManager(100 * time.Millisecond)
	t.Cleanup(m.Stop)

	userID := uuid.New()
	conn, _, err := fastws.DefaultDialer.Dial(serveManager(t, m, userID), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.GetTotalClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	// client ไม่อ่านเลย: socket buffer เต็มแล้ว write ต้องหมดเวลา
	payload := strings.Repeat("x", 1<<20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			m.BroadcastToUsers([]uuid.UUID{userID}, "task.updated", payload)
		}
	}()

	require.Eventually(t, func() bool { return m.GetTotalClients() == 0 }, 10*time.Second, 20*time.Millisecond)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("broadcast queue stuck behind stalled client")
	}
}
