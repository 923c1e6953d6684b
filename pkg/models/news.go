package models

import "time"

// NewsArticle is one housing-market headline pulled from an RSS feed.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	Sentiment   float64   `json:"sentiment"` // -1..1, keyword-scored
	PublishedAt time.Time `json:"publishedAt"`
}

// Market mood labels derived from the aggregate sentiment score.
const (
	MoodHot     = "hot"
	MoodWarm    = "warm"
	MoodNeutral = "neutral"
	MoodCooling = "cooling"
	MoodCold    = "cold"
)

// MarketPulse aggregates recent headlines into a single market mood.
type MarketPulse struct {
	Score       float64       `json:"score"` // -1..1, recency-weighted
	Mood        string        `json:"mood"`
	ArticleCnt  int           `json:"articleCount"`
	TopArticles []NewsArticle `json:"topArticles"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
