package agi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Protocol defaults. The per-call HTTP timeout stays below the overall
// polling deadline so a single stalled call cannot blow the whole budget.
const (
	DefaultAgentName     = "agi-0"
	DefaultPollInterval  = 1 * time.Second
	DefaultStatusTimeout = 90 * time.Second
	DefaultHTTPTimeout   = 60 * time.Second
	DefaultMaxDocChars   = 20000

	truncationMarker = "\n\n[TRUNCATED]"
)

// Config carries everything the client needs to talk to the AGI service.
type Config struct {
	BaseURL       string
	APIKey        string
	AgentName     string
	PollInterval  time.Duration
	StatusTimeout time.Duration
	HTTPTimeout   time.Duration
	MaxDocChars   int
}

// Client talks to the hosted AGI runtime: session lifecycle, message
// submission and completion polling.
type Client struct {
	baseURL       string
	apiKey        string
	agentName     string
	pollInterval  time.Duration
	statusTimeout time.Duration
	maxDocChars   int
	httpClient    *http.Client
}

// NewClient validates the credential up front; a missing API key is a
// configuration error, not something to retry at call time.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AGI_API_KEY not set")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("AGI base URL not set")
	}
	if cfg.AgentName == "" {
		cfg.AgentName = DefaultAgentName
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = DefaultStatusTimeout
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.MaxDocChars <= 0 {
		cfg.MaxDocChars = DefaultMaxDocChars
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		agentName:     cfg.AgentName,
		pollInterval:  cfg.PollInterval,
		statusTimeout: cfg.StatusTimeout,
		maxDocChars:   cfg.MaxDocChars,
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// doRequest issues one authenticated call. Non-2xx responses become a
// *RequestError; an empty success body decodes as nothing.
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return &RequestError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type createSessionResponse struct {
	SessionId      string `json:"session_id"`
	Id             string `json:"id"`
	SessionIdCamel string `json:"sessionId"`
	VncUrl         string `json:"vnc_url"`
	VncUrlCamel    string `json:"vncUrl"`
}

// CreateSession opens a fresh remote session. The service has shipped the
// identifier under several key names; accept any of them.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var res createSessionResponse
	err := c.doRequest(ctx, http.MethodPost, "/sessions", map[string]string{"agent_name": c.agentName}, nil, &res)
	if err != nil {
		return nil, err
	}

	sessionId := res.SessionId
	if sessionId == "" {
		sessionId = res.Id
	}
	if sessionId == "" {
		sessionId = res.SessionIdCamel
	}
	if sessionId == "" {
		return nil, fmt.Errorf("unexpected create session response: no session id")
	}

	viewerUrl := res.VncUrl
	if viewerUrl == "" {
		viewerUrl = res.VncUrlCamel
	}

	return &Session{
		SessionId: sessionId,
		AgentName: c.agentName,
		ViewerUrl: viewerUrl,
	}, nil
}

// AttachDocument bounds the extracted text and stores it on the session.
// Attaching twice is rejected; the document context is set-once.
func (c *Client) AttachDocument(session *Session, text string) error {
	runes := []rune(text)
	if len(runes) > c.maxDocChars {
		text = string(runes[:c.maxDocChars]) + truncationMarker
	}
	return session.setDocumentText(text)
}

// Delete tears down the remote session. Sessions without an id (never
// created, or already forgotten) are a no-op.
func (c *Client) Delete(ctx context.Context, session *Session) error {
	if session == nil || session.SessionId == "" {
		return nil
	}
	return c.doRequest(ctx, http.MethodDelete, "/sessions/"+session.SessionId, nil, nil, nil)
}
