package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// GeminiClient talks to the generateContent REST endpoint.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.JSON {
		body.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, m := range req.Messages {
		role := string(m.Role)
		if role == "" {
			role = string(RoleUser)
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("llm read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		return nil, fmt.Errorf("llm status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformed
	}

	var sb strings.Builder
	gjson.GetBytes(raw, "candidates.0.content.parts.#.text").ForEach(func(_, v gjson.Result) bool {
		sb.WriteString(v.String())
		return true
	})
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Text: text,
		Usage: Usage{
			InputTokens:  gjson.GetBytes(raw, "usageMetadata.promptTokenCount").Int(),
			OutputTokens: gjson.GetBytes(raw, "usageMetadata.candidatesTokenCount").Int(),
		},
	}, nil
}
