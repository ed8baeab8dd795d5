package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// meterPrompt is the fixed instruction sent alongside the meter image.
const meterPrompt = "Provide the value in cubic meters of the meter, return only this numeric value"

// Client calls the Gemini generateContent endpoint to read the numeric
// value off a meter photo.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a new recognition client. baseURL points at the Gemini
// API root and is overridable for tests.
func NewClient(apiKey, model, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		logger:     logger,
	}
}

type generateContentRequest struct {
	Contents []contentPayload `json:"contents"`
}

type contentPayload struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ReadMeterValue sends the base64-encoded image to the recognition service
// and parses its textual answer as an integer.
func (c *Client) ReadMeterValue(ctx context.Context, imageBase64 string) (int64, error) {
	reqBody := generateContentRequest{
		Contents: []contentPayload{
			{
				Parts: []contentPart{
					{Text: meterPrompt},
					{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageBase64}},
				},
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recognition request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build recognition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read recognition response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("recognition service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return 0, fmt.Errorf("recognition service returned status %d", resp.StatusCode)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, fmt.Errorf("failed to decode recognition response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("recognition response contained no candidates")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("recognition returned non-numeric value %q: %w", text, err)
	}

	c.logger.Debug("meter value recognized", zap.Int64("value", value))

	return value, nil
}
