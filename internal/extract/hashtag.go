// Package extract pulls hashtags and mentions out of captions and comments.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Fold lowercases s with Unicode case mapping. A Caser keeps state, so one
// is built per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Hashtags returns the distinct lowercase tags in text, in order of first
// appearance. Text without tags yields an empty, non-nil slice.
func Hashtags(text string) []string {
	tags := []string{}
	seen := make(map[string]struct{})

	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := Fold(match[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeTag turns user input such as "#Sunny " into the stored form "sunny".
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "#")
	return Fold(tag)
}
