package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrUnavailable   = errors.New("llm: not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrMalformed     = errors.New("llm: malformed output")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role    Role
	Content string
}

type Request struct {
	System      string
	Messages    []Message
	JSON        bool
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

type Response struct {
	Text  string
	Usage Usage
}

// Client is the single capability the rest of the code needs from a hosted model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Unavailable fails every call; wired when no API key is configured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (*Response, error) {
	return nil, ErrUnavailable
}

// DecodeJSON unmarshals a model reply into v, tolerating markdown code fences.
func DecodeJSON(text string, v any) error {
	raw := StripFences(text)
	if raw == "" {
		return ErrEmptyResponse
	}
	if !gjson.Valid(raw) {
		return fmt.Errorf("%w: not json", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
