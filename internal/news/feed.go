// Package news pulls housing-market headlines from RSS feeds, scores
// them with a keyword sentiment dictionary and condenses them into a
// single MarketPulse for the dashboard and reports.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/propfolio/internal/infra"
	"github.com/seenimoa/propfolio/pkg/models"
)

// SourceConfig describes one RSS feed. Deployments can override the
// defaults through the config file.
type SourceConfig struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// DefaultSourceConfigs lists the housing-market feeds polled out of the box.
func DefaultSourceConfigs() []SourceConfig {
	return []SourceConfig{
		{
			Name: "Japan Property Central",
			URL:  "https://japanpropertycentral.com/feed/",
		},
		{
			Name: "Real Estate Japan",
			URL:  "https://resources.realestate.co.jp/feed/",
		},
		{
			Name: "R.E.port",
			URL:  "https://www.re-port.net/rss/news.rdf",
		},
		{
			Name: "Kenbiya News",
			URL:  "https://www.kenbiya.com/rss/news.xml",
		},
	}
}

// Source delivers articles from one feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsArticle, error)
}

// RSSSource reads a single RSS/Atom feed via gofeed.
type RSSSource struct {
	cfg     SourceConfig
	parser  *gofeed.Parser
	limiter *infra.RateLimiter
}

// NewRSSSource creates a feed reader. Pass a shared limiter so a pulse
// refresh does not hit every publisher at once; nil gets a private
// limiter of two requests per second.
func NewRSSSource(cfg SourceConfig, limiter *infra.RateLimiter) *RSSSource {
	if limiter == nil {
		limiter = infra.NewRateLimiter(2, time.Second)
	}
	p := gofeed.NewParser()
	p.UserAgent = infra.DefaultUserAgent
	p.Client = infra.HTTPClient
	return &RSSSource{cfg: cfg, parser: p, limiter: limiter}
}

// Name returns the configured feed name.
func (s *RSSSource) Name() string { return s.cfg.Name }

// Fetch downloads and parses the feed. Summaries are stripped of HTML;
// sentiment is left for the service layer to stamp.
func (s *RSSSource) Fetch(ctx context.Context) ([]models.NewsArticle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(s.cfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.cfg.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  s.cfg.Name,
			Summary: cleanHTML(item.Description),
		}
		if a.Title == "" {
			continue
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// StaticSource serves a fixed article list. Used by the demo command
// and as an offline fallback.
type StaticSource struct {
	name     string
	articles []models.NewsArticle
}

// NewStaticSource creates a source that always returns the given articles.
func NewStaticSource(name string, articles []models.NewsArticle) *StaticSource {
	return &StaticSource{name: name, articles: articles}
}

// Name returns the source name.
func (s *StaticSource) Name() string { return s.name }

// Fetch returns a copy of the configured articles.
func (s *StaticSource) Fetch(_ context.Context) ([]models.NewsArticle, error) {
	out := make([]models.NewsArticle, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

// cleanHTML strips markup from a feed summary using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
