package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/propfolio/internal/cache"
	"github.com/seenimoa/propfolio/pkg/models"
)

// ErrNoQuotes is returned when every source failed or matched nothing.
var ErrNoQuotes = errors.New("no rate quotes available")

const cacheKey = "rates:quotes"

// Collector fans out across rate sources concurrently and merges their
// quotes. Results are cached so repeated dashboard loads do not
// re-scrape the lenders.
type Collector struct {
	sources []Source
	cache   cache.Cache
	ttl     time.Duration
}

// NewCollector creates a collector over the given sources. A nil cache
// disables caching.
func NewCollector(sources []Source, c cache.Cache, ttl time.Duration) *Collector {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Collector{sources: sources, cache: c, ttl: ttl}
}

// Quotes returns the merged quote list, cheapest rate first within each
// lender. Individual source failures are tolerated as long as at least
// one source delivers.
func (c *Collector) Quotes(ctx context.Context) ([]models.RateQuote, error) {
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil {
			var cached []models.RateQuote
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var mu sync.Mutex
	var quotes []models.RateQuote
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range c.sources {
		src := src
		g.Go(func() error {
			qs, err := src.Fetch(gctx)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				mu.Unlock()
				return nil // non-fatal
			}
			mu.Lock()
			quotes = append(quotes, qs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("all rate sources failed: %w", errors.Join(errs...))
		}
		return nil, ErrNoQuotes
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Lender != quotes[j].Lender {
			return quotes[i].Lender < quotes[j].Lender
		}
		return quotes[i].AnnualRate < quotes[j].AnnualRate
	})

	if c.cache != nil {
		if data, err := json.Marshal(quotes); err == nil {
			c.cache.Set(ctx, cacheKey, data, c.ttl)
		}
	}

	return quotes, nil
}

// Best returns the cheapest quote usable for a loan of termYears.
// Quotes with an unspecified term (0) match any term.
func (c *Collector) Best(ctx context.Context, termYears int) (models.RateQuote, error) {
	quotes, err := c.Quotes(ctx)
	if err != nil {
		return models.RateQuote{}, err
	}

	best := models.RateQuote{}
	found := false
	for _, q := range quotes {
		if q.TermYears != 0 && q.TermYears < termYears {
			continue
		}
		if !found || q.AnnualRate < best.AnnualRate {
			best = q
			found = true
		}
	}
	if !found {
		return models.RateQuote{}, fmt.Errorf("%w for a %d-year term", ErrNoQuotes, termYears)
	}
	return best, nil
}

// Invalidate drops the cached quote list so the next call re-scrapes.
func (c *Collector) Invalidate(ctx context.Context) {
	if c.cache != nil {
		c.cache.Delete(ctx, cacheKey)
	}
}
