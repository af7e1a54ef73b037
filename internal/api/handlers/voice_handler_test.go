package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/internal/speech"
)

func newVoiceFixture() (*VoiceHandler, *recordingPublisher) {
	publisher := &recordingPublisher{}
	speaker := speech.NewSpeaker(publisher, speech.DefaultParams, testLogger())
	repo := schedule.NewMemoryRepository()
	return NewVoiceHandler(testLogger(), repo, speaker), publisher
}

func TestVoiceCommandCreatesItem(t *testing.T) {
	handler, publisher := newVoiceFixture()

	resp := rpcCall(t, handler.Command, "alice", VoiceCommandRequest{
		Transcript: "remind me to take medicine at 8 pm",
	})

	require.Nil(t, resp.Error)

	var result VoiceCommandResponse
	decodeResult(t, resp, &result)
	assert.Equal(t, "Take medicine", result.Item.Title)
	assert.Equal(t, "20:00", result.Item.Time.String())
	assert.True(t, result.Parsed.TimeExplicit)

	require.NotEmpty(t, publisher.utterances())
	assert.Equal(t, "Added Take medicine at 20:00", publisher.utterances()[0])
}

func TestVoiceCommandDefaultsWhenNoTime(t *testing.T) {
	handler, _ := newVoiceFixture()

	resp := rpcCall(t, handler.Command, "alice", VoiceCommandRequest{
		Transcript: "remind me to water the plants",
	})

	require.Nil(t, resp.Error)

	var result VoiceCommandResponse
	decodeResult(t, resp, &result)
	assert.Equal(t, "09:00", result.Item.Time.String())
	assert.False(t, result.Parsed.TimeExplicit)
}

func TestVoiceCommandRecognizerFailure(t *testing.T) {
	handler, publisher := newVoiceFixture()

	resp := rpcCall(t, handler.Command, "alice", VoiceCommandRequest{
		ErrorCode: "no-permission",
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrCodePermissionDenied, resp.Error.Code)

	// The failure is spoken as well as returned
	require.NotEmpty(t, publisher.utterances())
	assert.Contains(t, publisher.utterances()[0], "microphone permission")
}

func TestVoiceCommandUnknownFailureCode(t *testing.T) {
	handler, _ := newVoiceFixture()

	resp := rpcCall(t, handler.Command, "alice", VoiceCommandRequest{
		ErrorCode: "something-new",
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrCodeNoMatch, resp.Error.Code)
}

func TestVoiceCommandEmptyTranscript(t *testing.T) {
	handler, publisher := newVoiceFixture()

	resp := rpcCall(t, handler.Command, "alice", VoiceCommandRequest{})

	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrCodeNoMatch, resp.Error.Code)
	require.NotEmpty(t, publisher.utterances())
}
