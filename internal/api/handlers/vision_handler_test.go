package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/internal/provider/vision"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/config"
)

func newVisionFixture(t *testing.T, body string) (*VisionHandler, *recordingPublisher) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	publisher := &recordingPublisher{}
	speaker := speech.NewSpeaker(publisher, speech.DefaultParams, testLogger())
	classifier := vision.NewClient(config.VisionConfig{
		URL:      server.URL,
		MinScore: 0.5,
	}, testLogger())

	return NewVisionHandler(testLogger(), classifier, speaker, publisher), publisher
}

func TestVisionDescribe(t *testing.T) {
	handler, publisher := newVisionFixture(t, `{"results":[
		{"label":"a door","score":0.92},
		{"label":"a chair","score":0.71},
		{"label":"dust","score":0.11}]}`)

	resp := rpcCall(t, handler.Describe, "alice", DescribeRequest{Image: "ZnJhbWU="})
	require.Nil(t, resp.Error)

	var result DescribeResponse
	decodeResult(t, resp, &result)
	require.Len(t, result.Labels, 2)
	assert.Equal(t, "I can see a door and a chair", result.Utterance)

	// Spoken and published as a vision result
	require.NotEmpty(t, publisher.utterances())
	assert.Equal(t, result.Utterance, publisher.utterances()[0])

	var visionEvents int
	for _, e := range publisher.events {
		if ve, ok := e.(*cqrs.VisionResultEvent); ok {
			visionEvents++
			assert.Equal(t, "alice", ve.UserID)
			assert.Len(t, ve.Labels, 2)
		}
	}
	assert.Equal(t, 1, visionEvents)
}

func TestVisionDescribeNothingRecognized(t *testing.T) {
	handler, _ := newVisionFixture(t, `{"results":[{"label":"blur","score":0.2}]}`)

	resp := rpcCall(t, handler.Describe, "alice", DescribeRequest{Image: "ZnJhbWU="})
	require.Nil(t, resp.Error)

	var result DescribeResponse
	decodeResult(t, resp, &result)
	assert.Empty(t, result.Labels)
	assert.Equal(t, "I couldn't recognize anything in front of you", result.Utterance)
}

func TestVisionDescribeEmptyImage(t *testing.T) {
	handler, _ := newVisionFixture(t, `{"results":[]}`)

	resp := rpcCall(t, handler.Describe, "alice", DescribeRequest{})
	require.NotNil(t, resp.Error)
}
