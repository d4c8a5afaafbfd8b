// Package llm talks to an OpenAI-compatible vision model (OpenRouter by
// default) to transcribe text from images.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	requestTimeout = 45 * time.Second
	noTextMarker   = "NO_TEXT_FOUND"
)

const visionPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
	"- No formatting\n" +
	"- No XML/HTML tags\n" +
	"- No markdown\n" +
	"- No explanations\n" +
	"- Preserve line breaks accurately from the visual layout.\n" +
	"If no text found, return '" + noTextMarker + "'"

// ErrNoText is returned when the model reports an image without text.
var ErrNoText = errors.New("no text detected in image")

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// Client is a vision OCR client. It is safe for concurrent use.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		conf.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	conf.HTTPClient = attributionDoer{client: &http.Client{Timeout: requestTimeout}}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Client{
		api:       openai.NewClientWithConfig(conf),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// attributionDoer adds the headers OpenRouter uses to attribute traffic.
type attributionDoer struct {
	client *http.Client
}

func (d attributionDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", "https://github.com/odins-eye/odins-eye")
	req.Header.Set("X-Title", "Odin's Eye")
	return d.client.Do(req)
}

// QueryVision sends one image and returns the transcribed text. mimeType
// defaults to image/png. The call is made once; there are no retries.
func (c *Client) QueryVision(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if len(imageData) == 0 {
		return "", errors.New("empty image")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh},
				},
			},
		}},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in API response")
	}

	text := cleanExtractedText(resp.Choices[0].Message.Content)
	if strings.TrimSpace(text) == "" || strings.TrimSpace(text) == noTextMarker {
		return "", ErrNoText
	}
	return text, nil
}

// Ping checks that the endpoint accepts the key.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// cleanExtractedText strips the trailing image tag some models echo back.
func cleanExtractedText(text string) string {
	text = strings.TrimSuffix(text, "</image>")
	return strings.TrimRight(text, "\r\n")
}
