package news

import (
	"math"
	"strings"

	"github.com/seenimoa/propfolio/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-based sentiment scorer (offline, deterministic).
// Crude by construction: it scans headlines for dictionary hits and
// nets them out, which is enough to label a market mood without any
// external service.
// ------------------------------------------------------------------

// hot / cold keyword dictionaries (lowercase). Weights reflect how
// strongly a word signals direction for property prices, so supply
// shortage counts as hot and oversupply as cold.
var hotWords = map[string]float64{
	"surge": 0.7, "soar": 0.7, "record high": 0.7, "boom": 0.7,
	"bullish": 0.7, "bidding war": 0.7, "rally": 0.6,
	"rate cut": 0.6, "tight supply": 0.6, "shortage": 0.5,
	"rebound": 0.5, "recovery": 0.5, "appreciation": 0.5,
	"rising": 0.5, "upbeat": 0.5, "lower rates": 0.5,
	"rise": 0.4, "growth": 0.4, "strong": 0.4, "positive": 0.4,
	"demand": 0.3, "inbound": 0.3, "redevelopment": 0.3,
}

var coldWords = map[string]float64{
	"crash": 0.8, "plunge": 0.7, "foreclosure": 0.7, "default": 0.7,
	"bearish": 0.7, "slump": 0.6, "oversupply": 0.6, "glut": 0.6,
	"rate hike": 0.6, "bubble": 0.6, "downturn": 0.6,
	"decline": 0.5, "correction": 0.5, "vacancy": 0.5,
	"vacancies": 0.5, "cooling": 0.5, "depopulation": 0.5,
	"higher rates": 0.5, "fall": 0.4, "drop": 0.4, "weak": 0.4,
	"negative": 0.4, "stagnant": 0.4, "akiya": 0.4,
}

// ScoreHeadline returns a sentiment score for a piece of headline text.
// Score ranges from -1.0 (very cold) to +1.0 (very hot); confidence
// grows with the number of keyword matches.
func ScoreHeadline(text string) (score float64, confidence float64) {
	lower := strings.ToLower(text)

	hotScore := 0.0
	coldScore := 0.0
	matches := 0

	for word, weight := range hotWords {
		if strings.Contains(lower, word) {
			hotScore += weight
			matches++
		}
	}

	for word, weight := range coldWords {
		if strings.Contains(lower, word) {
			coldScore += weight
			matches++
		}
	}

	if matches == 0 {
		return 0, 0.1 // no signal
	}

	total := hotScore + coldScore
	if total == 0 {
		return 0, 0.1
	}

	// Net score normalized to -1..+1.
	score = (hotScore - coldScore) / total

	// Confidence based on number of keyword matches.
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)

	return score, confidence
}

// ScoreArticle scores title and summary together.
func ScoreArticle(a models.NewsArticle) (score float64, confidence float64) {
	text := a.Title
	if a.Summary != "" {
		text += " " + a.Summary
	}
	return ScoreHeadline(text)
}
