// Package search derives the lookup tokens stored on a gallery title.
package search

import (
	"regexp"
	"strings"
)

var (
	wordRe    = regexp.MustCompile(`\w+`)
	hashtagRe = regexp.MustCompile(`#\w+`)
)

// StopWords are never indexed as words.
var StopWords = []string{"the", "in", "and"}

// Words returns the lowercased word runs of text without stop words.
// Duplicates are dropped, first occurrence wins.
func Words(text string) []string {
	words := make([]string, 0)
	seen := make(map[string]struct{})

	for _, w := range wordRe.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if isStopWord(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	return words
}

// Hashtags returns every "#word" run of text, lowercased and deduplicated.
func Hashtags(text string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})

	for _, tag := range hashtagRe.FindAllString(text, -1) {
		tag = strings.ToLower(tag)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags
}

// Tokens is Words and Hashtags in one call.
func Tokens(text string) (words, hashtags []string) {
	return Words(text), Hashtags(text)
}

func isStopWord(w string) bool {
	for _, s := range StopWords {
		if s == w {
			return true
		}
	}
	return false
}
