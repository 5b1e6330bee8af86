package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const chatPath = "/api/chatbot/"

// ChatClient talks to the remote assistant endpoint.
type ChatClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewChatClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ChatContext carries the current scan analysis alongside a question.
// All fields are optional on the wire; an empty context marshals to {}.
type ChatContext struct {
	TumorType        string             `json:"tumor_type,omitempty"`
	Confidence       float64            `json:"confidence,omitempty"`
	Probabilities    map[string]float64 `json:"probabilities,omitempty"`
	IsAutomaticQuery bool               `json:"is_automatic_query,omitempty"`
}

type chatRequest struct {
	Message string      `json:"message"`
	Context ChatContext `json:"context"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

// Send posts the message and returns the assistant's reply. Every failure
// comes back as an *APIError.
func (c *ChatClient) Send(ctx context.Context, message string, chatCtx ChatContext) (string, error) {
	jsonData, err := json.Marshal(chatRequest{Message: message, Context: chatCtx})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+chatPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending chat message",
		zap.Int("length", len(message)),
		zap.Bool("automatic", chatCtx.IsAutomaticQuery))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat request failed", zap.Error(err))
		return "", newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newNetworkError(err)
	}

	var chatResp chatResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		json.Unmarshal(respBody, &chatResp)
		c.logger.Warn("chat service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", chatResp.Error))
		return "", newServerError(resp.StatusCode, chatResp.Error)
	}

	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", newMalformedError("response is not valid JSON")
	}
	if chatResp.Reply == "" {
		return "", newMalformedError("response missing reply field")
	}

	return chatResp.Reply, nil
}
