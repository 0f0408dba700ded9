package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Config configures the chat completions endpoint used for meal extraction
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client talks to an OpenAI-compatible chat completions API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new extraction client
func NewClient(cfg Config) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5)

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chatMessage          `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractFromText estimates the meal described by free text
func (c *Client) ExtractFromText(ctx context.Context, text string) (*domain.MealExtraction, error) {
	return c.extract(ctx, "text", []chatMessage{
		{Role: "system", Content: textSystemPrompt},
		{Role: "user", Content: text},
	})
}

// ExtractFromTranscript estimates the meal described in a voice transcript
func (c *Client) ExtractFromTranscript(ctx context.Context, transcript string) (*domain.MealExtraction, error) {
	return c.extract(ctx, "transcript", []chatMessage{
		{Role: "system", Content: transcriptSystemPrompt},
		{Role: "user", Content: transcript},
	})
}

// ExtractFromImage estimates the meal shown in a photo
func (c *Client) ExtractFromImage(ctx context.Context, image []byte, mimeType string) (*domain.MealExtraction, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidRequest, mimeType)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	return c.extract(ctx, "image", []chatMessage{
		{Role: "system", Content: imageSystemPrompt},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: "Estimate the nutrition of this meal."},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		}},
	})
}

func (c *Client) extract(ctx context.Context, source string, messages []chatMessage) (*domain.MealExtraction, error) {
	if c.apiKey == "" {
		return nil, domain.ErrExtractionUnavailable
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	extraction, err := ParseExtraction(content)
	if err != nil {
		logger.Warn("[EXTRACT] unparseable reply", zap.String("source", source), zap.Error(err))
		return nil, err
	}

	logger.Info("[EXTRACT] meal extracted",
		zap.String("source", source),
		zap.Int("items", len(extraction.Items)),
		zap.Float64("calories", extraction.TotalMacros.Calories))
	return extraction, nil
}

// complete sends a chat completions request and returns the first choice's content.
// Transport errors, 429 and 5xx responses are retried with exponential backoff.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		status, respBody, err := c.doRequest(ctx, body)
		if err != nil {
			logger.Warn("[EXTRACT] request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		if status != http.StatusOK {
			logger.Warn("[EXTRACT] api error",
				zap.Int("attempt", attempt),
				zap.Int("status", status),
				zap.String("body", truncate(string(respBody), 512)))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrExtractionFailed, status)
			if status == http.StatusTooManyRequests || status >= 500 {
				continue
			}
			return "", lastErr
		}

		var chat chatResponse
		if err := json.Unmarshal(respBody, &chat); err != nil {
			return "", fmt.Errorf("%w: decode response: %v", domain.ErrExtractionFailed, err)
		}
		if len(chat.Choices) == 0 {
			return "", fmt.Errorf("%w: no choices in response", domain.ErrExtractionFailed)
		}
		return chat.Choices[0].Message.Content, nil
	}

	logger.Error("[EXTRACT] all retries failed", zap.Error(lastErr))
	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "NutriCoach/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", domain.ErrExtractionFailed, err)
	}
	return resp.StatusCode, respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
