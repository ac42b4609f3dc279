package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordSummarizer(t *testing.T) {
	k := NewKeywordSummarizer()
	notes := "Reviewed the IRA rollover. Client wants to Rebalance toward bonds and harvest losses before year end."

	s, err := k.Generate(context.Background(), notes)
	require.NoError(t, err)
	assert.Equal(t, []string{"portfolio", "retirement", "tax"}, s.Topics)
	assert.Equal(t, "Discussed portfolio, retirement and tax.", s.Text)
	assert.Equal(t, "keyword", k.Name())
}

func TestKeywordSummarizerNoTopics(t *testing.T) {
	s, err := NewKeywordSummarizer().Generate(context.Background(), "Talked about the weather.")
	require.NoError(t, err)
	assert.Empty(t, s.Topics)
	assert.Equal(t, "No recognized topics were discussed.", s.Text)
}

func TestKeywordSummarizerCustomTopics(t *testing.T) {
	k := &KeywordSummarizer{Topics: map[string][]string{"custody": {"schwab"}}}
	s, err := k.Generate(context.Background(), "Move assets to Schwab")
	require.NoError(t, err)
	assert.Equal(t, "Discussed custody.", s.Text)
}

func TestKeywordSummarizerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewKeywordSummarizer().Generate(ctx, "tax")
	assert.ErrorIs(t, err, context.Canceled)
}
