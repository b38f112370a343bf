package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flightops-platform/internal/models"
)

// fakeClock is an adjustable time source for cache expiry tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(clock *fakeClock) *Cache {
	return NewCache(10*time.Minute, 15*time.Minute, clock.Now, nil)
}

func TestCacheHitWithinDuration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	resp := &models.FlightsResponse{Flights: []models.RawFlight{{FlightName: "KL1001"}}}
	cache.Put("all:2026-08-30", resp)

	clock.Advance(9 * time.Minute)

	got, ok := cache.Get("all:2026-08-30")
	assert.True(t, ok)
	assert.Equal(t, resp, got)
}

func TestCacheMissAfterDuration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	cache.Put("all:2026-08-30", &models.FlightsResponse{})

	clock.Advance(10 * time.Minute)

	got, ok := cache.Get("all:2026-08-30")
	assert.False(t, ok, "an entry exactly at the cache duration is stale")
	assert.Nil(t, got)
}

func TestCacheMissUnknownKey(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := newTestCache(clock)

	got, ok := cache.Get("single")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCacheEvictionAfterExpiryWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	cache.Put("all:2026-08-30", &models.FlightsResponse{})
	assert.Equal(t, 1, cache.Len())

	// Stale but still within the expiry window: kept in the map.
	clock.Advance(12 * time.Minute)
	cache.EvictExpired()
	assert.Equal(t, 1, cache.Len())

	clock.Advance(4 * time.Minute)
	cache.EvictExpired()
	assert.Equal(t, 0, cache.Len())
}

func TestCachePutEvictsOpportunistically(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	cache.Put("all:2026-08-30", &models.FlightsResponse{})

	clock.Advance(16 * time.Minute)
	cache.Put("all:2026-08-31", &models.FlightsResponse{})

	assert.Equal(t, 1, cache.Len(), "writing a fresh entry purges ones past the expiry window")
	_, ok := cache.Get("all:2026-08-31")
	assert.True(t, ok)
}

func TestCacheOverwriteRefreshesEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock)

	first := &models.FlightsResponse{Flights: []models.RawFlight{{FlightName: "KL1"}}}
	cache.Put("single", first)

	clock.Advance(8 * time.Minute)
	second := &models.FlightsResponse{Flights: []models.RawFlight{{FlightName: "KL2"}}}
	cache.Put("single", second)

	clock.Advance(8 * time.Minute)

	got, ok := cache.Get("single")
	assert.True(t, ok, "overwriting resets the entry's age")
	assert.Equal(t, second, got)
}

func TestQueryCacheKey(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"all pages with date", Query{FetchAll: true, Date: "2026-08-30"}, "all:2026-08-30"},
		{"all pages without date", Query{FetchAll: true}, "single"},
		{"single page", Query{Date: "2026-08-30"}, "single"},
		{"direction and airline do not split keys", Query{Direction: "D", Airline: "KL", FetchAll: true, Date: "2026-08-30"}, "all:2026-08-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.CacheKey())
		})
	}
}
