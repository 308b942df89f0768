package agi

import (
	"encoding/json"
	"strings"
)

// ConfidenceLow is the only confidence value with decision weight; anything
// else (including absent) is treated as unremarkable.
const ConfidenceLow = "low"

// Answer is the structured view of an agent reply. The remote service does
// not guarantee a shape: a reply may be a plain string, in which case every
// field except Text stays at its zero value.
type Answer struct {
	Text           string   `json:"text"`
	Sources        []string `json:"sources"`
	Confidence     string   `json:"confidence"`
	DecisionReason string   `json:"decision_reason"`
}

// ParseAnswer resolves the reply shape once, so callers never probe for
// optional fields themselves. A JSON object is decoded field-by-field with
// zero-value defaults; anything else is a plain-text answer.
func ParseAnswer(raw string) *Answer {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var a Answer
		if err := json.Unmarshal([]byte(trimmed), &a); err == nil {
			if a.Text == "" {
				a.Text = raw
			}
			return &a
		}
	}
	return &Answer{Text: raw}
}

// IsDocGap reports whether the answer signals a documentation gap: the agent
// was not confident, cited nothing, or explicitly said the docs are silent.
func (a *Answer) IsDocGap() bool {
	return a.Confidence == ConfidenceLow ||
		len(a.Sources) == 0 ||
		a.DecisionReason == "no_relevant_docs"
}
