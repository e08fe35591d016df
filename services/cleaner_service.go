package services

import (
	"regexp"
	"strings"
)

const MaxTopicRunes = 100

var (
	reTopicControl = regexp.MustCompile("[\\x00-\\x1f\\x7f`\"]+")
	reTopicSpaces  = regexp.MustCompile(`\s+`)
)

// CleanTopic makes a user-supplied topic safe to quote inside the prompt:
// no control characters, quotes or backticks, single spaces, at most
// MaxTopicRunes runes.
func CleanTopic(topic string) string {
	cleaned := reTopicControl.ReplaceAllString(topic, " ")
	cleaned = reTopicSpaces.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if r := []rune(cleaned); len(r) > MaxTopicRunes {
		cleaned = strings.TrimSpace(string(r[:MaxTopicRunes]))
	}
	return cleaned
}
