// Package sse delivers assist notifications (speech requests, reminder
// notices, navigation instructions, vision results) to connected clients as
// JSON-RPC notifications over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// Client represents a connected SSE client
type Client struct {
	ID       string
	UserID   string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan bool
	LastSeen time.Time
	mutex    sync.Mutex // Protects concurrent writes to this client
}

// UserMessage represents a message targeted to a specific user
type UserMessage struct {
	UserID       string
	Notification jsonrpcx.Notification
}

// Broadcaster manages SSE connections and broadcasts
type Broadcaster struct {
	logger        *logger.Logger
	clients       map[string]*Client
	userClients   map[string][]*Client
	mutex         sync.RWMutex
	broadcast     chan []byte
	userBroadcast chan UserMessage
	cleanup       *time.Ticker
	shutdown      chan struct{}
}

// NewBroadcaster creates a new SSE broadcaster
func NewBroadcaster(logger *logger.Logger) *Broadcaster {
	broadcaster := &Broadcaster{
		logger:        logger.WithComponent("sse-broadcaster"),
		clients:       make(map[string]*Client),
		userClients:   make(map[string][]*Client),
		broadcast:     make(chan []byte, 1000),
		userBroadcast: make(chan UserMessage, 1000),
		cleanup:       time.NewTicker(30 * time.Second),
		shutdown:      make(chan struct{}),
	}

	go broadcaster.broadcastLoop()
	go broadcaster.userBroadcastLoop()
	go broadcaster.cleanupLoop()

	return broadcaster
}

// AddClient adds a new SSE client
func (b *Broadcaster) AddClient(client *Client) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.clients[client.ID] = client
	b.userClients[client.UserID] = append(b.userClients[client.UserID], client)

	b.logger.Debug("SSE client connected",
		zap.String("clientId", client.ID),
		zap.String("userId", client.UserID))
}

// RemoveClient removes an SSE client
func (b *Broadcaster) RemoveClient(clientID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	client, exists := b.clients[clientID]
	if !exists {
		return
	}

	select {
	case <-client.Done:
		// Channel already closed
	default:
		close(client.Done)
	}
	delete(b.clients, clientID)

	if userClients := b.userClients[client.UserID]; userClients != nil {
		for i, uc := range userClients {
			if uc.ID == clientID {
				b.userClients[client.UserID] = append(userClients[:i], userClients[i+1:]...)
				break
			}
		}
		if len(b.userClients[client.UserID]) == 0 {
			delete(b.userClients, client.UserID)
		}
	}

	b.logger.Debug("SSE client disconnected",
		zap.String("clientId", clientID),
		zap.String("userId", client.UserID))
}

// BroadcastToAll sends a JSON-RPC notification to all connected clients
func (b *Broadcaster) BroadcastToAll(notification jsonrpcx.Notification) {
	data, err := json.Marshal(notification)
	if err != nil {
		b.logger.Error("Failed to marshal JSON-RPC notification", zap.Error(err))
		return
	}

	select {
	case b.broadcast <- data:
	default:
		b.logger.Warn("Broadcast channel full, dropping message")
	}
}

// BroadcastToUsers sends a JSON-RPC notification to the given users, skipping
// any that are not connected to this server
func (b *Broadcaster) BroadcastToUsers(targetUsers []string, notification jsonrpcx.Notification) {
	if len(targetUsers) == 0 {
		return
	}

	b.mutex.RLock()
	localTargetUsers := make([]string, 0)
	for _, userID := range targetUsers {
		if clients := b.userClients[userID]; len(clients) > 0 {
			localTargetUsers = append(localTargetUsers, userID)
		}
	}
	b.mutex.RUnlock()

	if len(localTargetUsers) == 0 {
		b.logger.Debug("No target users connected",
			zap.Strings("targetUsers", targetUsers))
		return
	}

	for _, userID := range localTargetUsers {
		msg := UserMessage{UserID: userID, Notification: notification}
		select {
		case b.userBroadcast <- msg:
		default:
			b.logger.Warn("User broadcast channel full, dropping message",
				zap.String("userId", userID))
		}
	}
}

// userBroadcastLoop handles broadcasting messages to specific users
func (b *Broadcaster) userBroadcastLoop() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in userBroadcastLoop", zap.Any("panic", r))
			go b.userBroadcastLoop()
		}
	}()

	for {
		select {
		case <-b.shutdown:
			return
		case msg := <-b.userBroadcast:
			b.mutex.RLock()
			userClients := append([]*Client(nil), b.userClients[msg.UserID]...)
			b.mutex.RUnlock()

			if len(userClients) == 0 {
				continue
			}

			data, err := json.Marshal(msg.Notification)
			if err != nil {
				b.logger.Error("Failed to marshal user notification", zap.Error(err))
				continue
			}

			var toRemove []string
			for _, client := range userClients {
				select {
				case <-client.Done:
					toRemove = append(toRemove, client.ID)
				default:
					if err := b.sendToClient(client, data); err != nil {
						b.logger.Warn("Failed to send to user client",
							zap.String("clientId", client.ID),
							zap.String("userId", client.UserID),
							zap.Error(err))
						toRemove = append(toRemove, client.ID)
					}
				}
			}

			for _, clientID := range toRemove {
				b.RemoveClient(clientID)
			}
		}
	}
}

// broadcastLoop handles broadcasting messages to all connected clients
func (b *Broadcaster) broadcastLoop() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in broadcastLoop", zap.Any("panic", r))
			go b.broadcastLoop()
		}
	}()

	for {
		select {
		case <-b.shutdown:
			return
		case data := <-b.broadcast:
			b.mutex.RLock()
			clients := make([]*Client, 0, len(b.clients))
			for _, client := range b.clients {
				clients = append(clients, client)
			}
			b.mutex.RUnlock()

			for _, client := range clients {
				select {
				case <-client.Done:
					b.RemoveClient(client.ID)
				default:
					if err := b.sendToClient(client, data); err != nil {
						b.logger.Warn("Failed to send to client",
							zap.String("clientId", client.ID),
							zap.Error(err))
						b.RemoveClient(client.ID)
					}
				}
			}
		}
	}
}

// sendToClient sends data to a specific SSE client
func (b *Broadcaster) sendToClient(client *Client, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in sendToClient", zap.Any("panic", r))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	if client == nil || client.Writer == nil || client.Flusher == nil {
		return fmt.Errorf("client is not writable")
	}

	// Client-specific mutex prevents interleaved writes from both loops
	client.mutex.Lock()
	defer client.mutex.Unlock()

	select {
	case <-client.Done:
		return fmt.Errorf("client connection closed")
	default:
	}

	sseData := fmt.Sprintf("data: %s\n\n", data)
	n, err := client.Writer.Write([]byte(sseData))
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(sseData) {
		return fmt.Errorf("incomplete write: wrote %d/%d bytes", n, len(sseData))
	}

	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

// cleanupLoop removes stale connections
func (b *Broadcaster) cleanupLoop() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in cleanupLoop", zap.Any("panic", r))
			go b.cleanupLoop()
		}
	}()

	for {
		select {
		case <-b.shutdown:
			return
		case <-b.cleanup.C:
			b.mutex.Lock()
			now := time.Now()
			for clientID, client := range b.clients {
				if now.Sub(client.LastSeen) > 60*time.Second {
					b.logger.Debug("Removing stale SSE client",
						zap.String("clientId", clientID))
					close(client.Done)
					delete(b.clients, clientID)
				}
			}
			b.mutex.Unlock()
		}
	}
}

// GetClientCount returns the number of connected clients
func (b *Broadcaster) GetClientCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.clients)
}

// Close shuts down the broadcaster
func (b *Broadcaster) Close() {
	b.logger.Debug("Shutting down SSE broadcaster")

	close(b.shutdown)
	b.cleanup.Stop()

	b.mutex.Lock()
	defer b.mutex.Unlock()

	for clientID, client := range b.clients {
		b.logger.Debug("Force closing SSE client", zap.String("clientId", clientID))
		close(client.Done)
	}
	b.clients = make(map[string]*Client)
	b.userClients = make(map[string][]*Client)
}

// HandleSSE handles the assist notification stream
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		b.logger.Error("SSE: no user ID in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Server-Sent Events not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	clientID := fmt.Sprintf("%s-%d", userID, time.Now().UnixNano())
	client := &Client{
		ID:       clientID,
		UserID:   userID,
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan bool),
		LastSeen: time.Now(),
	}

	b.AddClient(client)
	defer b.RemoveClient(clientID)

	initialMsg := fmt.Sprintf("data: {\"type\":\"connected\",\"client_id\":\"%s\"}\n\n", clientID)
	w.Write([]byte(initialMsg))
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-client.Done:
			return
		case <-r.Context().Done():
			b.logger.Debug("SSE request context cancelled", zap.String("clientId", clientID))
			return
		case <-b.shutdown:
			return
		case <-heartbeat.C:
			if err := b.sendHeartbeat(client); err != nil {
				b.logger.Warn("Failed to send heartbeat",
					zap.String("clientId", clientID),
					zap.Error(err))
				return
			}
		}
	}
}

// sendHeartbeat sends a heartbeat message to the SSE client
func (b *Broadcaster) sendHeartbeat(client *Client) error {
	data := fmt.Sprintf(`{"type":"heartbeat","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	return b.sendToClient(client, []byte(data))
}
