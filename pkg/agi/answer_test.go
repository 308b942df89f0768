package agi

import (
	"reflect"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Answer
	}{
		{
			name: "plain string",
			raw:  "The export button saves a CSV.",
			want: Answer{Text: "The export button saves a CSV."},
		},
		{
			name: "structured answer",
			raw:  `{"text":"See page 4","sources":["guide.pdf#4"],"confidence":"high","decision_reason":"matched_section"}`,
			want: Answer{Text: "See page 4", Sources: []string{"guide.pdf#4"}, Confidence: "high", DecisionReason: "matched_section"},
		},
		{
			name: "structured with missing fields",
			raw:  `{"text":"Not sure"}`,
			want: Answer{Text: "Not sure"},
		},
		{
			name: "malformed json stays plain text",
			raw:  `{"text": unquoted}`,
			want: Answer{Text: `{"text": unquoted}`},
		},
		{
			name: "object without text keeps raw",
			raw:  `{"confidence":"low"}`,
			want: Answer{Text: `{"confidence":"low"}`, Confidence: "low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnswer(tt.raw)
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("ParseAnswer(%q) = %+v, want %+v", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestIsDocGap(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   bool
	}{
		{
			name:   "confident answer with sources",
			answer: Answer{Text: "yes", Sources: []string{"a"}, Confidence: "high"},
			want:   false,
		},
		{
			name:   "low confidence",
			answer: Answer{Text: "maybe", Sources: []string{"a"}, Confidence: ConfidenceLow},
			want:   true,
		},
		{
			name:   "no sources",
			answer: Answer{Text: "yes", Confidence: "high"},
			want:   true,
		},
		{
			name:   "explicit no relevant docs",
			answer: Answer{Text: "n/a", Sources: []string{"a"}, Confidence: "high", DecisionReason: "no_relevant_docs"},
			want:   true,
		},
		{
			name:   "plain text answer always gaps",
			answer: *ParseAnswer("just words"),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.answer.IsDocGap(); got != tt.want {
				t.Errorf("IsDocGap = %v, want %v", got, tt.want)
			}
		})
	}
}
