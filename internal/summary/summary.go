// Package summary turns meeting notes into a short digest.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Summary is the output of a SummaryGenerator
type Summary struct {
	Text   string
	Topics []string
}

// SummaryGenerator produces a digest of meeting notes. Implementations may call
// out to an NLP backend; the keyword matcher below needs no I/O.
type SummaryGenerator interface {
	Name() string
	Generate(ctx context.Context, notes string) (Summary, error)
}

// DefaultTopics maps a topic label to the lowercase keywords that signal it
var DefaultTopics = map[string][]string{
	"portfolio":  {"rebalanc", "allocation", "portfolio", "equities", "bonds"},
	"retirement": {"retire", "401k", "ira", "pension", "rmd"},
	"tax":        {"tax", "harvest", "capital gain", "cpa"},
	"estate":     {"estate", "trust", "beneficiar", "will "},
	"insurance":  {"insurance", "annuity", "long-term care"},
	"education":  {"529", "college", "tuition"},
	"cash flow":  {"budget", "spending", "cash flow", "income"},
	"fees":       {"fee", "billing", "invoice"},
}

// KeywordSummarizer tags notes with topics by case-insensitive substring match
type KeywordSummarizer struct {
	Topics map[string][]string
}

func NewKeywordSummarizer() *KeywordSummarizer {
	return &KeywordSummarizer{Topics: DefaultTopics}
}

func (k *KeywordSummarizer) Name() string { return "keyword" }

func (k *KeywordSummarizer) Generate(ctx context.Context, notes string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	lower := strings.ToLower(notes)

	var topics []string
	for topic, keywords := range k.Topics {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	sort.Strings(topics)

	if len(topics) == 0 {
		return Summary{Text: "No recognized topics were discussed.", Topics: []string{}}, nil
	}
	return Summary{
		Text:   fmt.Sprintf("Discussed %s.", joinTopics(topics)),
		Topics: topics,
	}, nil
}

func joinTopics(topics []string) string {
	switch len(topics) {
	case 1:
		return topics[0]
	case 2:
		return topics[0] + " and " + topics[1]
	}
	return strings.Join(topics[:len(topics)-1], ", ") + " and " + topics[len(topics)-1]
}
