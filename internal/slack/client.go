package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIBaseURL is Slack's Web API root.
const DefaultAPIBaseURL = "https://slack.com/api"

// Client is a thin wrapper around the two Slack Web API calls the bridge
// needs: chat.postMessage and views.open.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client authenticated with the given bot token.
// baseURL may be empty to use the real Slack API; tests point it at a
// local server.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type postMessageRequest struct {
	Channel  string  `json:"channel"`
	Text     string  `json:"text"`
	Blocks   []Block `json:"blocks,omitempty"`
	ThreadTS string  `json:"thread_ts,omitempty"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

// PostMessage posts a message to a channel, optionally threaded under
// threadTS, and returns the new message's timestamp id.
func (c *Client) PostMessage(ctx context.Context, channel, text string, blocks []Block, threadTS string) (string, error) {
	var result postMessageResponse
	if err := c.call(ctx, "chat.postMessage", postMessageRequest{
		Channel:  channel,
		Text:     text,
		Blocks:   blocks,
		ThreadTS: threadTS,
	}, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", fmt.Errorf("chat.postMessage: %s", result.Error)
	}
	return result.TS, nil
}

type openModalRequest struct {
	TriggerID string    `json:"trigger_id"`
	View      ModalView `json:"view"`
}

type openModalResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// OpenModal opens a modal view using the interaction's trigger id.
func (c *Client) OpenModal(ctx context.Context, triggerID string, view ModalView) error {
	var result openModalResponse
	if err := c.call(ctx, "views.open", openModalRequest{TriggerID: triggerID, View: view}, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("views.open: %s", result.Error)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s: status %d: %s", method, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
