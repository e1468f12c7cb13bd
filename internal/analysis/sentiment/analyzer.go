package sentiment

import (
	"sort"
	"strings"
)

// Label 表示情感分类的标签。
type Label string

const (
	Negative Label = "negative"
	Neutral  Label = "neutral"
	Positive Label = "positive"
)

// Labels lists the sentiment labels in classifier index order.
func Labels() []Label {
	return []Label{Negative, Neutral, Positive}
}

// Score pairs a label with its normalized probability.
type Score struct {
	Label Label
	Score float64
}

// Result 给出情感识别结果。Scores 按得分从高到低排列。
type Result struct {
	Label      Label
	Confidence float64
	Scores     []Score
}

var keywordBuckets = map[Label][]string{
	Positive: {
		"love", "great", "awesome", "amazing", "happy", "glad", "thanks", "thank you", "nice", "good",
		"wonderful", "excited", "yay", "lol", "haha", "promoted", "congrats", "fantastic", "best", "enjoy",
		"开心", "高兴", "快乐", "喜欢", "太好了", "太棒了", "哈哈", "谢谢", "满意",
	},
	Negative: {
		"sad", "upset", "angry", "hate", "awful", "terrible", "tired", "lonely", "depressed", "hurt",
		"stressed", "anxious", "worried", "sucked", "sucks", "bad", "cry", "miserable", "down", "stuck",
		"can't sleep", "难过", "伤心", "生气", "失望", "沮丧", "烦", "累", "孤单",
	},
}

// priors keep an unmatched text leaning neutral without claiming certainty.
var priors = map[Label]float64{
	Negative: 0.5,
	Neutral:  2,
	Positive: 0.5,
}

const keywordWeight = 3

// Analyze 根据关键词与标点推断文本的情感倾向。
func Analyze(text string) Result {
	raw := scoreText(text)

	total := 0.0
	for _, label := range Labels() {
		raw[label] += priors[label]
		total += raw[label]
	}

	scores := make([]Score, 0, len(raw))
	for _, label := range Labels() {
		scores = append(scores, Score{Label: label, Score: raw[label] / total})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	return Result{Label: scores[0].Label, Confidence: scores[0].Score, Scores: scores}
}

func scoreText(text string) map[Label]float64 {
	scores := make(map[Label]float64, 3)
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if containsWord(normalized, word) {
				scores[label] += keywordWeight
			}
		}
	}

	// 单个感叹号偏积极，多个感叹号只放大已有倾向。
	exclamations := strings.Count(text, "!") + strings.Count(text, "！")
	switch {
	case exclamations == 1:
		scores[Positive] += 2
	case exclamations > 1:
		if scores[Negative] > scores[Positive] {
			scores[Negative] += float64(exclamations)
		} else {
			scores[Positive] += float64(exclamations)
		}
	}

	return scores
}

// containsWord matches ASCII keywords on word boundaries and everything else
// as a substring.
func containsWord(text, word string) bool {
	if !isASCII(word) {
		return strings.Contains(text, word)
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		if (idx == 0 || !isWordByte(text[idx-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = idx + 1
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\'' || ('a' <= b && b <= 'z') || ('0' <= b && b <= '9')
}
