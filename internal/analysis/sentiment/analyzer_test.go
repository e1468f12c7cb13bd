package sentiment

import "testing"

func TestAnalyzePositive(t *testing.T) {
	result := Analyze("I love this!")
	if result.Label != Positive {
		t.Fatalf("expected positive, got %s", result.Label)
	}
	if result.Confidence <= 0.5 || result.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", result.Confidence)
	}
}

func TestAnalyzeNegative(t *testing.T) {
	result := Analyze("Today sucked and I'm so tired")
	if result.Label != Negative {
		t.Fatalf("expected negative, got %s", result.Label)
	}
}

func TestAnalyzeNeutralWithoutSignals(t *testing.T) {
	result := Analyze("Just got back from the store")
	if result.Label != Neutral {
		t.Fatalf("expected neutral, got %s", result.Label)
	}
	if result.Confidence >= 1 {
		t.Fatalf("neutral fallback should not claim certainty, got %f", result.Confidence)
	}
}

func TestAnalyzeMatchesWordBoundaries(t *testing.T) {
	// "goodbye" must not count as "good", "download" not as "down".
	result := Analyze("goodbye, starting the download")
	if result.Label != Neutral {
		t.Fatalf("expected neutral, got %s", result.Label)
	}
}

func TestAnalyzeScoresSumToOne(t *testing.T) {
	result := Analyze("我今天很难过!!")
	if result.Label != Negative {
		t.Fatalf("expected negative, got %s", result.Label)
	}
	if len(result.Scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(result.Scores))
	}

	sum := 0.0
	for i, s := range result.Scores {
		sum += s.Score
		if i > 0 && s.Score > result.Scores[i-1].Score {
			t.Fatalf("scores not sorted: %+v", result.Scores)
		}
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("scores should sum to 1, got %f", sum)
	}
}
