package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model),
	}
}

func newAnthropicAt(baseURL, apiKey, model string) *Anthropic {
	return &Anthropic{baseProvider: newBaseProvider(baseURL, apiKey, model)}
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (a *Anthropic) request(prompt string, stream bool) map[string]any {
	payload := map[string]any{
		"model":       a.model,
		"max_tokens":  anthropicMaxTokens,
		"temperature": 0,
		"messages":    []chatMessage{{Role: core.RoleUser, Content: prompt}},
	}
	if stream {
		payload["stream"] = true
	}
	return payload
}

func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withCompleteTimeout(ctx)
	defer cancel()

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", a.request(prompt, false), a.headers())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	var text strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}

func (a *Anthropic) Stream(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
	headers := a.headers()
	headers["Accept"] = "text/event-stream"

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", a.request(prompt, true), headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var full strings.Builder
	finished := false
	err = readSSE(resp.Body, func(event, data string) (bool, error) {
		switch event {
		case "content_block_delta":
			var ev struct {
				Delta struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				return false, fmt.Errorf("decode delta: %w", err)
			}
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				full.WriteString(ev.Delta.Text)
				sink.OnToken(ev.Delta.Text)
			}
		case "message_stop":
			finished = true
			return true, nil
		case "error":
			var ev struct {
				Error struct {
					Type    string `json:"type"`
					Message string `json:"message"`
				} `json:"error"`
			}
			_ = json.Unmarshal([]byte(data), &ev)
			if ev.Error.Type == "rate_limit_error" || ev.Error.Type == "overloaded_error" {
				return false, fmt.Errorf("%w: %s", core.ErrRateLimited, ev.Error.Message)
			}
			return false, fmt.Errorf("stream error: %s", ev.Error.Message)
		}
		return false, nil
	})
	if err != nil {
		return full.String(), err
	}
	if !finished {
		return full.String(), fmt.Errorf("stream ended early: %w", io.ErrUnexpectedEOF)
	}
	return full.String(), nil
}

func (a *Anthropic) Models(ctx context.Context) ([]core.Model, error) {
	var models []core.Model
	afterID := ""

	for {
		path := "/v1/models?limit=1000"
		if afterID != "" {
			path = fmt.Sprintf("%s&after_id=%s", path, url.QueryEscape(afterID))
		}

		resp, err := a.doRequest(ctx, http.MethodGet, path, nil, a.headers())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			err := statusError(resp)
			resp.Body.Close()
			return nil, err
		}

		var result struct {
			Data []struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
				Type        string `json:"type"`
			} `json:"data"`
			HasMore bool   `json:"has_more"`
			LastID  string `json:"last_id"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		for _, m := range result.Data {
			if m.Type == "model" {
				models = append(models, core.Model{ID: m.ID, Name: m.DisplayName})
			}
		}

		if !result.HasMore {
			break
		}
		afterID = result.LastID
	}

	return models, nil
}
