package ui

import (
	"sort"
	"strings"
)

const (
	// MaxSuggestionDistance is the largest edit distance offered as a suggestion
	MaxSuggestionDistance = 3
	// MaxSuggestions caps the number of suggestions
	MaxSuggestions = 3
)

// SuggestClassNames returns known class names close to target, closest
// first. A name matches on its full form or on its short name (the part
// after the last namespace separator), case-insensitively.
func SuggestClassNames(target string, known []string) []string {
	type match struct {
		name     string
		distance int
	}

	t := strings.ToLower(target)
	short := strings.ToLower(shortName(target))

	var matches []match
	for _, name := range known {
		candidate := strings.ToLower(name)
		d := LevenshteinDistance(t, candidate)
		if sd := LevenshteinDistance(short, strings.ToLower(shortName(name))); sd < d {
			d = sd
		}
		if d <= MaxSuggestionDistance && name != target {
			matches = append(matches, match{name: name, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, MaxSuggestions)
	for i := 0; i < len(matches) && i < MaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

func shortName(className string) string {
	if i := strings.LastIndexAny(className, `\/.`); i >= 0 {
		return className[i+1:]
	}
	return className
}

// LevenshteinDistance returns the number of single-character edits needed
// to turn s1 into s2
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
