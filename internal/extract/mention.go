package extract

import (
	"regexp"
	"strings"

	"lumigram/internal/model"
)

var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_.\-]+)`)

// MentionTokens returns the raw "@name" tokens in text without the "@".
func MentionTokens(text string) []string {
	tokens := []string{}
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		tokens = append(tokens, match[1])
	}
	return tokens
}

// ValidMentions keeps the candidates whose "@"+display text still occurs in
// text, compared case-insensitively. Candidates are keyed by user id and
// folded display text and the first one per key wins.
func ValidMentions(text string, candidates []model.MentionCandidate) []model.MentionCandidate {
	valid := []model.MentionCandidate{}
	if len(candidates) == 0 {
		return valid
	}

	folded := Fold(text)
	seen := make(map[[2]string]struct{})

	for _, c := range candidates {
		display := strings.TrimSpace(c.DisplayText)
		if c.UserID == "" || display == "" {
			continue
		}

		normalized := Fold(display)
		if !strings.Contains(folded, "@"+normalized) {
			continue
		}

		key := [2]string{c.UserID, normalized}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, model.MentionCandidate{UserID: c.UserID, DisplayText: display})
	}
	return valid
}
