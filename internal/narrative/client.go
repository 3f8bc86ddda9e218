// Package narrative turns extracted iris features into practitioner-style
// readings using a local language model served by Ollama.
package narrative

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Client wraps the Ollama API client.
type Client struct {
	client *api.Client
}

// NewClient builds a client for the given Ollama base URL, ignoring any
// path component such as /api/chat.
func NewClient(host string) (*Client, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	baseURL := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Client{client: api.NewClient(baseURL, http.DefaultClient)}, nil
}

// Chat sends a system/user prompt pair, optionally with attached images, and
// returns the accumulated response text.
func (c *Client) Chat(ctx context.Context, model, system, prompt string, images [][]byte) (string, error) {
	messages := []api.Message{
		{Role: "system", Content: system},
	}
	user := api.Message{Role: "user", Content: prompt}
	for _, img := range images {
		user.Images = append(user.Images, api.ImageData(img))
	}
	messages = append(messages, user)

	streamFalse := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &streamFalse,
	}

	var content string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	if content == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return content, nil
}
