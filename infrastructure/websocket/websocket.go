package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"taskboard/pkg/logger"
)

// defaultWriteTimeout เวลาสูงสุดต่อการเขียน 1 message; client ที่ไม่อ่านจะถูกตัดออก
const defaultWriteTimeout = 10 * time.Second

// WebSocketManager ถือ connection ทั้งหมด; การเขียนลง connection ทำใน run loop เท่านั้น
type WebSocketManager struct {
	clients         map[*websocket.Conn]uuid.UUID
	userConnections map[uuid.UUID]map[*websocket.Conn]bool // 1 user เปิดได้หลาย tab
	register        chan Client
	unregister      chan *websocket.Conn
	broadcast       chan BroadcastMessage
	done            chan struct{}
	writeTimeout    time.Duration
	stopOnce        sync.Once
	mutex           sync.RWMutex
}

type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type BroadcastMessage struct {
	Message Message
	UserIDs []uuid.UUID
	Conn    *websocket.Conn // ส่งถึง connection เดียว (เช่น pong)
}

func NewWebSocketManager() *WebSocketManager {
	return newWebSocketManager(defaultWriteTimeout)
}

func newWebSocketManager(writeTimeout time.Duration) *WebSocketManager {
	m := &WebSocketManager{
		clients:         make(map[*websocket.Conn]uuid.UUID),
		userConnections: make(map[uuid.UUID]map[*websocket.Conn]bool),
		register:        make(chan Client),
		unregister:      make(chan *websocket.Conn),
		broadcast:       make(chan BroadcastMessage, 256),
		done:            make(chan struct{}),
		writeTimeout:    writeTimeout,
	}
	go m.run()
	return m
}

func (m *WebSocketManager) run() {
	for {
		select {
		case <-m.done:
			m.mutex.Lock()
			for conn := range m.clients {
				conn.Close()
			}
			m.clients = make(map[*websocket.Conn]uuid.UUID)
			m.userConnections = make(map[uuid.UUID]map[*websocket.Conn]bool)
			m.mutex.Unlock()
			return

		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.Conn] = client.UserID
			if m.userConnections[client.UserID] == nil {
				m.userConnections[client.UserID] = make(map[*websocket.Conn]bool)
			}
			m.userConnections[client.UserID][client.Conn] = true
			m.mutex.Unlock()

			logger.Info("WebSocket client connected", "user_id", client.UserID)

		case conn := <-m.unregister:
			m.remove(conn)

		case message := <-m.broadcast:
			for _, conn := range m.targets(message) {
				if err := m.write(conn, message.Message); err != nil {
					logger.Warn("WebSocket write failed", "error", err)
					m.remove(conn)
				}
			}
		}
	}
}

func (m *WebSocketManager) write(conn *websocket.Conn, message Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(m.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(message)
}

func (m *WebSocketManager) targets(message BroadcastMessage) []*websocket.Conn {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if message.Conn != nil {
		if _, ok := m.clients[message.Conn]; ok {
			return []*websocket.Conn{message.Conn}
		}
		return nil
	}

	var conns []*websocket.Conn
	seen := make(map[uuid.UUID]bool, len(message.UserIDs))
	for _, userID := range message.UserIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		for conn := range m.userConnections[userID] {
			conns = append(conns, conn)
		}
	}
	return conns
}

func (m *WebSocketManager) remove(conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	userID, ok := m.clients[conn]
	if !ok {
		return
	}
	delete(m.clients, conn)
	if conns := m.userConnections[userID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.userConnections, userID)
		}
	}
	conn.Close()

	logger.Info("WebSocket client disconnected", "user_id", userID)
}

func (m *WebSocketManager) RegisterClient(conn *websocket.Conn, userID uuid.UUID) {
	select {
	case m.register <- Client{Conn: conn, UserID: userID}:
	case <-m.done:
	}
}

func (m *WebSocketManager) UnregisterClient(conn *websocket.Conn) {
	select {
	case m.unregister <- conn:
	case <-m.done:
	}
}

// BroadcastToUsers ส่ง message ถึงทุก connection ของ user ที่ระบุ (user ซ้ำส่งครั้งเดียว)
func (m *WebSocketManager) BroadcastToUsers(userIDs []uuid.UUID, messageType string, data interface{}) {
	m.enqueue(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
		UserIDs: userIDs,
	})
}

func (m *WebSocketManager) sendTo(conn *websocket.Conn, messageType string, data interface{}) {
	m.enqueue(BroadcastMessage{
		Message: Message{Type: messageType, Data: data},
		Conn:    conn,
	})
}

func (m *WebSocketManager) enqueue(message BroadcastMessage) {
	select {
	case m.broadcast <- message:
	case <-m.done:
	}
}

func (m *WebSocketManager) GetTotalClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Stop ปิดทุก connection และหยุด run loop
func (m *WebSocketManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

// HandleMessage ตอบ message ที่ client ส่งมา (ตอนนี้มีแค่ ping)
func (m *WebSocketManager) HandleMessage(conn *websocket.Conn, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.Debug("Ignoring malformed WebSocket message", "error", err)
		return
	}

	switch message.Type {
	case "ping":
		m.sendTo(conn, "pong", "pong")
	default:
		logger.Debug("Unknown WebSocket message type", "type", message.Type)
	}
}
