package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	cqrsevents "github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

type fakeBroadcaster struct {
	toUsers []struct {
		users        []string
		notification jsonrpcx.Notification
	}
	toAll []jsonrpcx.Notification
}

func (f *fakeBroadcaster) BroadcastToUsers(targetUsers []string, notification jsonrpcx.Notification) {
	f.toUsers = append(f.toUsers, struct {
		users        []string
		notification jsonrpcx.Notification
	}{targetUsers, notification})
}

func (f *fakeBroadcaster) BroadcastToAll(notification jsonrpcx.Notification) {
	f.toAll = append(f.toAll, notification)
}

func newHandlerFixture() (*SSEEventHandler, *fakeBroadcaster) {
	broadcaster := &fakeBroadcaster{}
	return NewSSEEventHandler(broadcaster, logger.NewDefault()), broadcaster
}

func TestSpeechRequestedGoesToOwner(t *testing.T) {
	handler, broadcaster := newHandlerFixture()

	err := handler.HandleSpeechRequestedEvent(context.Background(), &cqrsevents.SpeechRequestedEvent{
		UserID:    "alice",
		Text:      "It's time for Lunch",
		Seq:       7,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, broadcaster.toUsers, 1)
	assert.Equal(t, []string{"alice"}, broadcaster.toUsers[0].users)
	assert.Equal(t, "speech.speak", broadcaster.toUsers[0].notification.Method)

	params := broadcaster.toUsers[0].notification.Params.(map[string]interface{})
	assert.Equal(t, "It's time for Lunch", params["text"])
	assert.Equal(t, uint64(7), params["seq"])
}

func TestNavigationEndedMethodDependsOnArrival(t *testing.T) {
	handler, broadcaster := newHandlerFixture()

	require.NoError(t, handler.HandleNavigationEndedEvent(context.Background(), &cqrsevents.NavigationEndedEvent{
		UserID:  "alice",
		Arrived: true,
	}))
	require.NoError(t, handler.HandleNavigationEndedEvent(context.Background(), &cqrsevents.NavigationEndedEvent{
		UserID:  "alice",
		Arrived: false,
	}))

	require.Len(t, broadcaster.toUsers, 2)
	assert.Equal(t, "navigation.arrived", broadcaster.toUsers[0].notification.Method)
	assert.Equal(t, "navigation.stopped", broadcaster.toUsers[1].notification.Method)
}

func TestSSENotificationEventRouting(t *testing.T) {
	handler, broadcaster := newHandlerFixture()

	require.NoError(t, handler.HandleSSENotificationEvent(context.Background(), &cqrsevents.SSENotificationEvent{
		Type:   cqrsevents.SSENotificationTypeBroadcast,
		Method: "server.notice",
	}))
	require.NoError(t, handler.HandleSSENotificationEvent(context.Background(), &cqrsevents.SSENotificationEvent{
		Type:        cqrsevents.SSENotificationTypeUsers,
		TargetUsers: []string{"bob"},
		Method:      "server.notice",
	}))

	require.Len(t, broadcaster.toAll, 1)
	require.Len(t, broadcaster.toUsers, 1)
	assert.Equal(t, []string{"bob"}, broadcaster.toUsers[0].users)
}
