// Package faq provides the knowledge base behind the general help
// specialist: full-text FAQ search over SQLite FTS5, optional embedding
// re-ranking, and live reload of the FAQ file.
package faq

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTopK is the number of FAQs retrieved per question.
const DefaultTopK = 3

//go:embed faq.yaml
var defaultFAQ []byte

// Entry is one question and answer pair.
type Entry struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}

// Result is an entry with its relevance score. Higher is more relevant.
type Result struct {
	Entry
	Score float64 `json:"score"`
}

// Searcher finds the FAQs most relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Result, error)
}

type file struct {
	FAQs []Entry `yaml:"faqs"`
}

// DefaultEntries returns the built-in FAQ set.
func DefaultEntries() ([]Entry, error) {
	return parse(defaultFAQ)
}

// LoadFile reads FAQ entries from a YAML file.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse faq file: %w", err)
	}

	out := make([]Entry, 0, len(f.FAQs))
	for i, e := range f.FAQs {
		e.Question = strings.TrimSpace(e.Question)
		e.Answer = strings.TrimSpace(e.Answer)
		if e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("faq %d: question and answer are required", i+1)
		}
		out = append(out, e)
	}
	return out, nil
}

// FormatContext renders results for the general help prompt.
func FormatContext(results []Result) string {
	if len(results) == 0 {
		return "No relevant FAQs were found."
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "FAQ %d (score: %.3f)\nQ: %s\nA: %s\n\n", i+1, r.Score, r.Question, r.Answer)
	}
	return strings.TrimRight(sb.String(), "\n")
}
