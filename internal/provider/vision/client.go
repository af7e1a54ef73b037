// Package vision implements the image-classification collaborator. The
// inference service receives a camera frame and returns ranked labels; this
// client filters them to what is worth announcing.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/pkg/config"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// Label is one ranked classification result
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Client talks to the image classification inference service
type Client struct {
	httpClient   *http.Client
	url          string
	apiKey       string
	minScore     float64
	maxLabels    int
	announceTopN int
	logger       *logger.Logger
}

// NewClient creates a vision client from provider configuration
func NewClient(cfg config.VisionConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxLabels := cfg.MaxLabels
	if maxLabels <= 0 {
		maxLabels = 5
	}
	topN := cfg.AnnounceTopN
	if topN <= 0 {
		topN = 3
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		url:          cfg.URL,
		apiKey:       cfg.APIKey,
		minScore:     cfg.MinScore,
		maxLabels:    maxLabels,
		announceTopN: topN,
		logger:       log.WithComponent("vision-client"),
	}
}

type classifyRequest struct {
	Image string `json:"image"`
}

type classifyResponse struct {
	Results []Label `json:"results"`
}

// Classify sends a base64-encoded frame to the inference service and returns
// the labels above the score threshold, best first, capped to the configured
// maximum.
func (c *Client) Classify(ctx context.Context, imageBase64 string) ([]Label, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return nil, shared.ErrInvalidInput("image data cannot be empty")
	}

	body, err := json.Marshal(classifyRequest{Image: imageBase64})
	if err != nil {
		return nil, shared.ErrProviderUnavailable("vision", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, shared.ErrProviderUnavailable("vision", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.ErrProviderUnavailable("vision", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.ErrProviderUnavailable("vision", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, shared.ErrProviderUnavailable("vision", err)
	}

	var labels []Label
	for _, l := range payload.Results {
		if l.Score >= c.minScore {
			labels = append(labels, l)
		}
	}
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })
	if len(labels) > c.maxLabels {
		labels = labels[:c.maxLabels]
	}

	c.logger.Debug("Frame classified",
		zap.Int("returned", len(payload.Results)),
		zap.Int("kept", len(labels)))

	return labels, nil
}

// Utterance phrases the top labels as a spoken description. An empty result
// still produces something to say so the user is never left in silence.
func (c *Client) Utterance(labels []Label) string {
	if len(labels) == 0 {
		return "I couldn't recognize anything in front of you"
	}

	topN := c.announceTopN
	if len(labels) < topN {
		topN = len(labels)
	}

	names := make([]string, topN)
	for i := 0; i < topN; i++ {
		names[i] = labels[i].Label
	}

	switch len(names) {
	case 1:
		return "I can see " + names[0]
	case 2:
		return "I can see " + names[0] + " and " + names[1]
	default:
		return "I can see " + strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
