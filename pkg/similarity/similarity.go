package similarity

import (
	"regexp"
	"strings"
)

// Tunables for the blended score. Token overlap carries more weight than
// raw character similarity so paraphrases of the same issue still match.
const (
	jaccardWeight = 0.6
	charWeight    = 0.4
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	tokenRegex      = regexp.MustCompile(`[a-z0-9]+`)
)

// Normalize lowercases, trims and collapses internal whitespace runs so
// cosmetic differences never affect the score.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return whitespaceRegex.ReplaceAllString(text, " ")
}

// Tokenize splits text into alphanumeric tokens, dropping single-character
// tokens and punctuation.
func Tokenize(text string) []string {
	var tokens []string
	for _, t := range tokenRegex.FindAllString(strings.ToLower(text), -1) {
		if len(t) > 1 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func jaccard(a, b []string) float64 {
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}

	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	return float64(intersection) / float64(union)
}

// Score combines token Jaccard with a character-level sequence ratio and
// returns a value in [0,1]. It is deterministic and symmetric, and needs no
// embeddings or extra services.
func Score(q1, q2 string) float64 {
	n1, n2 := Normalize(q1), Normalize(q2)

	// Canonical argument order keeps the greedy block matcher symmetric.
	if n1 > n2 {
		n1, n2 = n2, n1
	}

	jac := jaccard(Tokenize(n1), Tokenize(n2))
	seq := matchRatio([]rune(n1), []rune(n2))

	return jaccardWeight*jac + charWeight*seq
}
