package agi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ClarificationFallback is returned when the agent pauses for input without
// having produced any usable clarification text.
const ClarificationFallback = "The assistant needs more information. Please rephrase or provide more details."

// documentPromptTemplate wraps the question in the attached document context
// and invites the agent to ask for clarification instead of guessing.
const documentPromptTemplate = "You are answering questions using the following document context.\n\n" +
	"DOCUMENT CONTEXT:\n%s\n\n" +
	"QUESTION:\n%s\n\n" +
	"If you need more info, ask a single clarification question."

type sessionMessage struct {
	Id      int         `json:"id"`
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

type messagesResponse struct {
	Messages []sessionMessage `json:"messages"`
}

// Run submits the prompt to the session and polls until a terminal signal.
//
// Completion detection, in order of strength:
//  1. a DONE message (fastest, short-circuits status polling)
//  2. an ERROR message or an error/failed status: terminal failure
//  3. status waiting_for_input: the agent asked a follow-up, return the
//     latest plain-text message instead of timing out
//
// If the deadline elapses first, the returned TimeoutError carries the last
// status payload observed.
func (c *Client) Run(ctx context.Context, session *Session, prompt string) (string, error) {
	fullMessage := prompt
	if doc := session.DocumentText(); strings.TrimSpace(doc) != "" {
		fullMessage = fmt.Sprintf(documentPromptTemplate, doc, prompt)
	}

	err := c.doRequest(ctx, http.MethodPost, "/sessions/"+session.SessionId+"/message",
		map[string]string{"message": fullMessage}, nil, nil)
	if err != nil {
		return "", err
	}

	afterId := 0
	deadline := time.Now().Add(c.statusTimeout)
	var lastStatus map[string]interface{}
	lastText := ""

	for time.Now().Before(deadline) {
		query := url.Values{
			"after_id": {strconv.Itoa(afterId)},
			"sanitize": {"true"},
		}
		var msgRes messagesResponse
		err := c.doRequest(ctx, http.MethodGet, "/sessions/"+session.SessionId+"/messages", nil, query, &msgRes)
		if err != nil {
			return "", err
		}

		for _, m := range msgRes.Messages {
			if m.Id > afterId {
				afterId = m.Id
			}

			switch strings.ToUpper(m.Type) {
			case "ERROR":
				return "", &SessionError{Detail: fmt.Sprintf("AGI ERROR message: %v", m.Content)}
			case "DONE":
				return renderContent(m.Content), nil
			}

			// Keep the last assistant text around in case the session
			// pauses on waiting_for_input.
			if s, ok := m.Content.(string); ok && strings.TrimSpace(s) != "" {
				lastText = strings.TrimSpace(s)
			}
		}

		lastStatus = nil
		err = c.doRequest(ctx, http.MethodGet, "/sessions/"+session.SessionId+"/status", nil, nil, &lastStatus)
		if err != nil {
			return "", err
		}

		status := ""
		if s, ok := lastStatus["status"].(string); ok {
			status = strings.ToLower(s)
		}

		switch status {
		case "error", "failed":
			return "", &SessionError{Detail: fmt.Sprintf("AGI status indicates failure: %v", lastStatus)}
		case "waiting_for_input":
			if lastText != "" {
				return lastText, nil
			}
			return ClarificationFallback, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return "", &TimeoutError{LastStatus: lastStatus}
}

// renderContent stringifies a DONE payload. Structured values serialize to
// canonical JSON; everything else goes through plain formatting.
func renderContent(content interface{}) string {
	switch content.(type) {
	case map[string]interface{}, []interface{}:
		if data, err := json.Marshal(content); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", content)
}
