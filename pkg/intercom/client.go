package intercom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.intercom.io"

	// maxSourcesInBody keeps the conversation body readable when the agent
	// tried many sources.
	maxSourcesInBody = 5

	requestTimeout = 15 * time.Second
)

// Config carries the Intercom credentials and sender identity.
type Config struct {
	AccessToken string
	APIBase     string
	FromType    string
	FromId      string
}

// Client creates Intercom conversations for doc-gap escalations.
type Client struct {
	token      string
	base       string
	fromType   string
	fromId     string
	httpClient *http.Client
}

// NewClient fails fast on missing credentials; escalation without a working
// ticketing identity is a deployment mistake, not a runtime condition.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("missing INTERCOM_ACCESS_TOKEN")
	}
	if cfg.FromType == "" || cfg.FromId == "" {
		return nil, errors.New("missing INTERCOM_FROM_TYPE or INTERCOM_FROM_ID")
	}

	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = defaultAPIBase
	}

	return &Client{
		token:      cfg.AccessToken,
		base:       base,
		fromType:   cfg.FromType,
		fromId:     cfg.FromId,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// DocGap is one detected documentation gap to escalate.
type DocGap struct {
	Question       string
	SignalCount    int
	Sources        []string
	Confidence     string
	DecisionReason string
}

// body renders the human-facing conversation text for the docs team.
func (g DocGap) body() string {
	lines := []string{
		"🚨 Doc gap detected",
		"",
		fmt.Sprintf("Question: %s", g.Question),
		fmt.Sprintf("Triggered by: %d signals", g.SignalCount),
		fmt.Sprintf("Agent confidence: %s", g.Confidence),
	}
	if g.DecisionReason != "" {
		lines = append(lines, "", fmt.Sprintf("Reason: %s", g.DecisionReason))
	}

	lines = append(lines, "", "Sources tried:")
	sources := g.Sources
	if len(sources) > maxSourcesInBody {
		sources = sources[:maxSourcesInBody]
	}
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("- %s", s))
	}

	return strings.Join(lines, "\n")
}

// CreateDocGap opens a conversation in the support queue and returns the
// conversation identifier. A missing identifier in an otherwise successful
// response yields "", not an error.
func (c *Client) CreateDocGap(ctx context.Context, gap DocGap) (string, error) {
	payload := map[string]interface{}{
		"from": map[string]string{"type": c.fromType, "id": c.fromId},
		"body": gap.body(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal conversation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/conversations", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("intercom request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("intercom error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		return "", fmt.Errorf("failed to decode intercom response: %w", err)
	}

	return extractConversationId(raw), nil
}

// extractConversationId handles the response shapes Intercom has produced:
// a message with a top-level conversation_id, a conversation object with its
// own id, or a message nesting a conversation object.
func extractConversationId(resp map[string]interface{}) string {
	if cid := stringValue(resp["conversation_id"]); cid != "" {
		return cid
	}

	if resp["type"] == "conversation" {
		if id := stringValue(resp["id"]); id != "" {
			return id
		}
	}

	if conv, ok := resp["conversation"].(map[string]interface{}); ok {
		if id := stringValue(conv["id"]); id != "" {
			return id
		}
	}

	return ""
}

// stringValue renders scalar identifiers, which Intercom serves both as
// strings and as numbers.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
