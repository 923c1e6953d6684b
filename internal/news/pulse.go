package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/propfolio/internal/cache"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ErrNoHeadlines is returned when every feed came back empty.
var ErrNoHeadlines = errors.New("no headlines available")

const headlinesCacheKey = "news:headlines"

// pulseTopArticles caps how many headlines ride along in a MarketPulse.
const pulseTopArticles = 5

// Service collects headlines across feeds and turns them into a market
// pulse. Collected articles are cached so dashboard refreshes do not
// re-poll the publishers.
type Service struct {
	sources []Source
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewService creates a news service over the given sources. A nil cache
// disables caching.
func NewService(sources []Source, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sources: sources, cache: c, ttl: ttl, logger: logger}
}

// Headlines returns recent articles from all feeds, newest first, each
// stamped with its sentiment score. Individual feed failures are logged
// and skipped as long as at least one feed delivers.
func (s *Service) Headlines(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	articles, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// Pulse condenses the current headline set into a market mood. An empty
// feed set yields a neutral pulse rather than an error.
func (s *Service) Pulse(ctx context.Context) (models.MarketPulse, error) {
	articles, err := s.Headlines(ctx, 0)
	if errors.Is(err, ErrNoHeadlines) {
		return BuildPulse(nil, time.Now()), nil
	}
	if err != nil {
		return models.MarketPulse{}, err
	}
	return BuildPulse(articles, time.Now()), nil
}

// Invalidate drops the cached headline set so the next call re-polls.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, headlinesCacheKey)
	}
}

func (s *Service) collect(ctx context.Context) ([]models.NewsArticle, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, headlinesCacheKey); err == nil {
			var cached []models.NewsArticle
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var articles []models.NewsArticle
	var errs []error
	for _, src := range s.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Warn("news feed failed",
				zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		articles = append(articles, items...)
	}

	if len(articles) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("all news feeds failed: %w", errors.Join(errs...))
		}
		return nil, ErrNoHeadlines
	}

	for i := range articles {
		articles[i].Sentiment, _ = ScoreArticle(articles[i])
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	if s.cache != nil {
		if data, err := json.Marshal(articles); err == nil {
			s.cache.Set(ctx, headlinesCacheKey, data, s.ttl)
		}
	}

	return articles, nil
}

// BuildPulse computes a recency-weighted aggregate sentiment over the
// given articles. Weight halves every three days; housing coverage
// stays relevant far longer than intraday market chatter.
func BuildPulse(articles []models.NewsArticle, now time.Time) models.MarketPulse {
	pulse := models.MarketPulse{
		Mood:        models.MoodNeutral,
		ArticleCnt:  len(articles),
		GeneratedAt: now,
	}
	if len(articles) == 0 {
		return pulse
	}

	arts := append([]models.NewsArticle(nil), articles...)

	weightedSum := 0.0
	totalWeight := 0.0
	for i := range arts {
		score, conf := ScoreArticle(arts[i])
		arts[i].Sentiment = score

		age := now.Sub(arts[i].PublishedAt).Hours()
		if age < 0 {
			age = 0
		}
		recency := math.Exp(-0.693 * age / 72) // ln 2, half-life 72h
		w := recency * conf

		weightedSum += score * w
		totalWeight += w
	}

	if totalWeight > 0 {
		pulse.Score = weightedSum / totalWeight
	}
	pulse.Mood = moodFor(pulse.Score)
	pulse.TopArticles = topArticles(arts, pulseTopArticles)
	return pulse
}

func moodFor(score float64) string {
	switch {
	case score > 0.3:
		return models.MoodHot
	case score > 0.1:
		return models.MoodWarm
	case score < -0.3:
		return models.MoodCold
	case score < -0.1:
		return models.MoodCooling
	default:
		return models.MoodNeutral
	}
}

// topArticles returns up to n articles with the strongest sentiment in
// either direction. The sort is stable so among equal scores the input
// order (newest first) wins.
func topArticles(articles []models.NewsArticle, n int) []models.NewsArticle {
	sorted := append([]models.NewsArticle(nil), articles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Sentiment) > math.Abs(sorted[j].Sentiment)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
