package sse

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// recorderClient wires a live client into the broadcaster backed by a
// response recorder so sent frames can be inspected
func recorderClient(id, userID string) (*Client, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return &Client{
		ID:       id,
		UserID:   userID,
		Writer:   rec,
		Flusher:  rec,
		Done:     make(chan bool),
		LastSeen: time.Now(),
	}, rec
}

func TestBroadcasterClientRegistry(t *testing.T) {
	broadcaster := NewBroadcaster(logger.NewDefault())
	defer broadcaster.Close()

	c1, _ := recorderClient("client1", "alice")
	c2, _ := recorderClient("client2", "bob")
	c3, _ := recorderClient("client3", "alice") // Same user, second connection

	broadcaster.AddClient(c1)
	broadcaster.AddClient(c2)
	broadcaster.AddClient(c3)
	assert.Equal(t, 3, broadcaster.GetClientCount())

	broadcaster.RemoveClient("client1")
	assert.Equal(t, 2, broadcaster.GetClientCount())

	// Removing an unknown client is a no-op
	broadcaster.RemoveClient("client1")
	assert.Equal(t, 2, broadcaster.GetClientCount())
}

func TestBroadcastToUsersDeliversOnlyToTargets(t *testing.T) {
	broadcaster := NewBroadcaster(logger.NewDefault())
	defer broadcaster.Close()

	aliceClient, aliceRec := recorderClient("client1", "alice")
	bobClient, bobRec := recorderClient("client2", "bob")
	broadcaster.AddClient(aliceClient)
	broadcaster.AddClient(bobClient)

	notification := jsonrpcx.NewNotification("reminder.due", map[string]interface{}{
		"title": "Take medicine",
	})
	broadcaster.BroadcastToUsers([]string{"alice"}, notification)

	require.Eventually(t, func() bool {
		return strings.Contains(aliceRec.Body.String(), "reminder.due")
	}, time.Second, 10*time.Millisecond)

	assert.NotContains(t, bobRec.Body.String(), "reminder.due")
}

func TestBroadcastToAllReachesEveryClient(t *testing.T) {
	broadcaster := NewBroadcaster(logger.NewDefault())
	defer broadcaster.Close()

	aliceClient, aliceRec := recorderClient("client1", "alice")
	bobClient, bobRec := recorderClient("client2", "bob")
	broadcaster.AddClient(aliceClient)
	broadcaster.AddClient(bobClient)

	notification := jsonrpcx.NewNotification("server.notice", map[string]interface{}{
		"message": "maintenance at midnight",
	})
	broadcaster.BroadcastToAll(notification)

	require.Eventually(t, func() bool {
		return strings.Contains(aliceRec.Body.String(), "server.notice") &&
			strings.Contains(bobRec.Body.String(), "server.notice")
	}, time.Second, 10*time.Millisecond)
}

func TestBroadcastToUsersSkipsUnknownUsers(t *testing.T) {
	broadcaster := NewBroadcaster(logger.NewDefault())
	defer broadcaster.Close()

	aliceClient, _ := recorderClient("client1", "alice")
	broadcaster.AddClient(aliceClient)

	notification := jsonrpcx.NewNotification("navigation.instruction", nil)

	// None of these may panic or grow the registry
	broadcaster.BroadcastToUsers([]string{"charlie"}, notification)
	broadcaster.BroadcastToUsers([]string{"alice", "david"}, notification)
	broadcaster.BroadcastToUsers(nil, notification)
	broadcaster.BroadcastToUsers([]string{}, notification)

	assert.Equal(t, 1, broadcaster.GetClientCount())
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	broadcaster := NewBroadcaster(logger.NewDefault())

	c1, _ := recorderClient("client1", "alice")
	c2, _ := recorderClient("client2", "bob")
	broadcaster.AddClient(c1)
	broadcaster.AddClient(c2)

	broadcaster.Close()
	assert.Equal(t, 0, broadcaster.GetClientCount())

	select {
	case <-c1.Done:
	default:
		t.Fatal("client done channel not closed on shutdown")
	}
}
