package intent

import (
	"strings"

	"onboarding-ai-be/pkg/history"
)

// Intent values returned by the classifier.
const (
	OnboardingHelp = "onboarding_help"
	DocumentQA     = "document_qa"
)

const (
	// DefaultRepeatCountThreshold is how many similar queries inside the
	// window escalate to onboarding help on their own.
	DefaultRepeatCountThreshold = 3

	// keywordRepeatMin is the lower repeat bar applied when a weak keyword
	// also hits. Keywords alone never trigger.
	keywordRepeatMin = 2
)

// onboardingKeywords is a weak signal only; the primary classifier is the
// frequency of similar queries.
var onboardingKeywords = []string{"cannot finish", "stuck", "can't complete", "step"}

// HistorySource yields the recent-query tracker owned by a user.
type HistorySource interface {
	ForUser(userId string) *history.Tracker
}

// Classifier decides whether a question is ordinary document Q&A or a sign
// of onboarding friction (the same user circling the same issue).
type Classifier struct {
	histories            HistorySource
	repeatCountThreshold int
}

func NewClassifier(histories HistorySource, repeatCountThreshold int) *Classifier {
	if repeatCountThreshold <= 0 {
		repeatCountThreshold = DefaultRepeatCountThreshold
	}
	return &Classifier{
		histories:            histories,
		repeatCountThreshold: repeatCountThreshold,
	}
}

// Classify returns OnboardingHelp or DocumentQA. It reads (and re-prunes)
// the user's history but never inserts into it.
func (c *Classifier) Classify(userId, question string) string {
	similarCount := c.histories.ForUser(userId).CountSimilar(question)

	q := strings.ToLower(question)
	keywordHit := false
	for _, k := range onboardingKeywords {
		if strings.Contains(q, k) {
			keywordHit = true
			break
		}
	}

	if similarCount >= c.repeatCountThreshold || (keywordHit && similarCount >= keywordRepeatMin) {
		return OnboardingHelp
	}
	return DocumentQA
}
