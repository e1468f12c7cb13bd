package emotion

import (
	"context"

	"github.com/zhouzirui/companion/backend/internal/analysis/sentiment"
)

// Lexicon is the local keyword scorer, used when no hosted classifier is set up.
type Lexicon struct{}

// Name implements Backend.
func (Lexicon) Name() string { return "lexicon" }

// Classify implements Backend.
func (Lexicon) Classify(ctx context.Context, text string) ([]Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := sentiment.Analyze(text)
	scores := make([]Score, 0, len(result.Scores))
	for _, s := range result.Scores {
		scores = append(scores, Score{Label: string(s.Label), Score: s.Score})
	}
	return scores, nil
}
