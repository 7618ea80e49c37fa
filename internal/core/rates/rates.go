// Package rates wraps the exchange-rate oracle with a small bounded
// cache. Staleness of the quotes themselves is enforced by the engine;
// the cache only limits how often the upstream oracle is consulted.
package rates

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/crowdlane/offeringd/internal/core/offering"
)

// Quote is one oracle reading: the reference-currency value of one unit
// of the quoted currency as a num/den pair, with the oracle timestamp.
type Quote struct {
	Num  uint64
	Den  uint64
	AsOf time.Time
}

// Source produces quotes for a currency.
type Source interface {
	Quote(cur offering.Currency) (Quote, error)
}

type cachedQuote struct {
	quote     Quote
	fetchedAt time.Time
}

// Cached serves quotes from an LRU cache, consulting the upstream
// source when the cached reading is older than the refresh interval.
type Cached struct {
	src     Source
	refresh time.Duration
	now     func() time.Time
	cache   *lru.Cache[offering.Currency, cachedQuote]
}

// NewCached wraps src. size bounds the cache; refresh is the maximum
// age of a cached reading before the source is consulted again.
func NewCached(src Source, size int, refresh time.Duration) (*Cached, error) {
	cache, err := lru.New[offering.Currency, cachedQuote](size)
	if err != nil {
		return nil, err
	}
	return &Cached{src: src, refresh: refresh, now: time.Now, cache: cache}, nil
}

// Rate implements offering.RateSource.
func (c *Cached) Rate(cur offering.Currency) (num, den uint64, asOf time.Time, err error) {
	now := c.now()
	if cached, ok := c.cache.Get(cur); ok && now.Sub(cached.fetchedAt) <= c.refresh {
		q := cached.quote
		return q.Num, q.Den, q.AsOf, nil
	}
	q, err := c.src.Quote(cur)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	c.cache.Add(cur, cachedQuote{quote: q, fetchedAt: now})
	return q.Num, q.Den, q.AsOf, nil
}
