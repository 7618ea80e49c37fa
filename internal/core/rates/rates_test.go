package rates

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdlane/offeringd/internal/core/offering"
)

type countingSource struct {
	quote Quote
	err   error
	calls int
}

func (s *countingSource) Quote(offering.Currency) (Quote, error) {
	s.calls++
	if s.err != nil {
		return Quote{}, s.err
	}
	return s.quote, nil
}

func TestCachedServesFromCache(t *testing.T) {
	asOf := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &countingSource{quote: Quote{Num: 2000, Den: 1, AsOf: asOf}}
	c, err := NewCached(src, 4, time.Minute)
	require.NoError(t, err)

	now := asOf
	c.now = func() time.Time { return now }

	num, den, got, err := c.Rate(offering.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), num)
	assert.Equal(t, uint64(1), den)
	assert.Equal(t, asOf, got)
	assert.Equal(t, 1, src.calls)

	// Within the refresh interval the source is not consulted again.
	now = now.Add(30 * time.Second)
	_, _, _, err = c.Rate(offering.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	// Past it, the reading is refreshed.
	now = now.Add(2 * time.Minute)
	_, _, _, err = c.Rate(offering.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("oracle down")}
	c, err := NewCached(src, 4, time.Minute)
	require.NoError(t, err)

	_, _, _, err = c.Rate(offering.CurrencyETH)
	assert.Error(t, err)

	// Errors are not cached; the next call retries.
	_, _, _, err = c.Rate(offering.CurrencyETH)
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedRejectsBadSize(t *testing.T) {
	_, err := NewCached(&countingSource{}, 0, time.Minute)
	assert.Error(t, err)
}
