package consensus

import (
	"strings"

	"github.com/juliuspor/Harmony/internal/store"
)

// Word polarities for the sentiment scan. Coverage follows the vocabulary
// that actually shows up in deliberation transcripts rather than a general
// purpose lexicon.
var sentimentLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "best": 1.0,
	"better": 0.5, "positive": 0.5, "beneficial": 0.7, "helpful": 0.6,
	"agree": 0.4, "support": 0.4, "love": 0.8, "like": 0.4,
	"wonderful": 1.0, "valuable": 0.6, "important": 0.4, "strong": 0.4,
	"effective": 0.6, "fair": 0.6, "promising": 0.6, "constructive": 0.6,
	"improve": 0.4, "progress": 0.4, "succeed": 0.6, "success": 0.6,
	"welcome": 0.5, "thoughtful": 0.6, "reasonable": 0.5,

	"bad": -0.7, "worse": -0.6, "worst": -1.0, "terrible": -1.0,
	"awful": -1.0, "negative": -0.5, "harmful": -0.7, "wrong": -0.5,
	"poor": -0.6, "hate": -0.8, "dislike": -0.5, "fail": -0.6,
	"failure": -0.6, "weak": -0.4, "unfair": -0.6, "dangerous": -0.7,
	"problem": -0.4, "concern": -0.3, "risk": -0.3, "damage": -0.6,
	"waste": -0.5, "useless": -0.7, "flawed": -0.5, "disappointing": -0.6,
}

// messagePolarity averages the polarity of sentiment-bearing words in a
// single text. Texts without any scored word are neutral.
func messagePolarity(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	var sum float64
	var n int
	for _, w := range words {
		if score, ok := sentimentLexicon[w]; ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// transcriptSentiment classifies the average message polarity as positive,
// negative, or neutral using a 0.1 dead band around zero.
func transcriptSentiment(messages []store.Message) string {
	if len(messages) == 0 {
		return "neutral"
	}
	var sum float64
	for _, msg := range messages {
		sum += messagePolarity(msg.Content)
	}
	avg := sum / float64(len(messages))
	switch {
	case avg > 0.1:
		return "positive"
	case avg < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}
