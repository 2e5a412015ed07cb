// Package gemini is a minimal client for the generateContent REST endpoint.
//
// Every call is single-shot. The API key is resolved per call so a key saved
// while the process runs is picked up by the next request.
package gemini

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

	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/logger"

	"github.com/google/uuid"
)

// KeyFunc returns the API key to use for the next call. Empty means absent.
type KeyFunc func() string

// Client talks to one model.
type Client struct {
	baseURL string
	model   string
	key     KeyFunc
	http    *http.Client
	log     *logger.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Model   string
	// Timeout bounds each call. Zero means no client-side timeout.
	Timeout time.Duration
}

func NewClient(opts Options, key KeyFunc, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		key:     key,
		http:    &http.Client{Timeout: opts.Timeout},
		log:     log.Component("gemini"),
	}
}

// Request is one generateContent call.
type Request struct {
	Prompt string
	System string
	// Schema, when set, asks for a JSON reply shaped by it.
	Schema map[string]any
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the request and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	apiKey := c.key()
	if apiKey == "" {
		return "", apperrors.NewConfigMissing("GEMINI_API_KEY")
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	if req.System != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if req.Schema != nil {
		body.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	callID := uuid.NewString()
	log := c.log.WithField("call_id", callID).WithField("model", c.model)

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.WithError(redact(err, apiKey)).Warn("gemini request failed")
		return "", apperrors.NewUpstream("gemini request failed", redact(err, apiKey))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstream("read gemini response", err)
	}
	log = log.WithField("http_status", resp.StatusCode).
		WithField("duration_ms", time.Since(start).Milliseconds())

	var parsed generateResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		log.Warn("gemini returned non-success status")
		return "", apperrors.NewUpstreamStatus(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		log.WithError(decodeErr).Warn("gemini response is not JSON")
		return "", apperrors.NewUpstream("decode gemini response", decodeErr)
	}
	if parsed.Error != nil {
		return "", apperrors.NewUpstream(parsed.Error.Message, nil)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		log.Warn("gemini returned no candidates")
		return "", apperrors.NewUpstream("gemini returned no candidates", nil)
	}

	log.Debug("gemini call completed")
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redact keeps the key out of *url.Error messages.
func redact(err error, apiKey string) error {
	if err == nil || apiKey == "" {
		return err
	}
	msg := err.Error()
	escaped := url.QueryEscape(apiKey)
	if !strings.Contains(msg, apiKey) && !strings.Contains(msg, escaped) {
		return err
	}
	msg = strings.ReplaceAll(msg, escaped, "REDACTED")
	msg = strings.ReplaceAll(msg, apiKey, "REDACTED")
	return &redactedError{msg: msg, err: err}
}
