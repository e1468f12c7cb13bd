package emotion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zhouzirui/companion/backend/internal/analysis/sentiment"
)

var defaultHints = map[string]string{
	string(sentiment.Negative): "[The user seems upset]",
	string(sentiment.Neutral):  "[The user seems neutral]",
	string(sentiment.Positive): "[The user seems happy]",
}

// LabelSet is the small enumeration of canonical sentiment labels, together
// with the aliases raw classifier labels are mapped through.
type LabelSet struct {
	aliases map[string]string
	hints   map[string]string
}

// NewLabelSet builds a label set from raw→canonical aliases. The canonical
// labels are the default negative/neutral/positive plus every alias target.
func NewLabelSet(aliases map[string]string) LabelSet {
	set := LabelSet{
		aliases: make(map[string]string, len(aliases)),
		hints:   make(map[string]string, len(defaultHints)+len(aliases)),
	}
	for label, hint := range defaultHints {
		set.hints[label] = hint
	}
	for raw, canonical := range aliases {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if canonical == "" {
			continue
		}
		set.aliases[strings.ToLower(strings.TrimSpace(raw))] = canonical
		if _, ok := set.hints[canonical]; !ok {
			set.hints[canonical] = fmt.Sprintf("[The user seems %s]", canonical)
		}
	}
	return set
}

// DefaultLabelSet maps the positional labels of three-way sentiment models.
func DefaultLabelSet() LabelSet {
	return NewLabelSet(map[string]string{
		"LABEL_0": string(sentiment.Negative),
		"LABEL_1": string(sentiment.Neutral),
		"LABEL_2": string(sentiment.Positive),
	})
}

// Normalize maps a raw classifier label onto a canonical label.
func (s LabelSet) Normalize(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := s.aliases[key]; ok {
		return canonical, true
	}
	if _, ok := s.hints[key]; ok {
		return key, true
	}
	return "", false
}

// Hint returns the bracketed tag appended to a user message for label.
func (s LabelSet) Hint(label string) string {
	return s.hints[label]
}

// Labels returns the canonical labels, sorted.
func (s LabelSet) Labels() []string {
	labels := make([]string, 0, len(s.hints))
	for label := range s.hints {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
