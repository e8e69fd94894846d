// Package cache provides the in-process TTL+LRU weather cache that sits
// between segment report generation and the forecast providers.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/routecast/routecast-backend/types"
)

const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 100
)

type entry struct {
	key      string
	data     *types.SegmentWeatherData
	cachedAt time.Time
}

// Stats is a point-in-time view of the cache returned by Stats().
type Stats struct {
	TotalEntries int           `json:"total_entries"`
	MaxEntries   int           `json:"max_entries"`
	TTL          time.Duration `json:"ttl"`
}

// WeatherCache caches one aggregated weather payload per (segment identity,
// time window) key. Entries expire after the TTL and the least recently used
// entry is evicted once MaxEntries is reached. A single mutex guards every
// operation for its full duration: get's check-evict-promote and set's
// evict-insert are each one critical section, so concurrent report runs
// cannot race each other into double evictions.
type WeatherCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List // front = least recently used
	items      map[string]*list.Element

	// now is injectable for TTL tests.
	now func() time.Time

	hits   prometheus.Counter
	misses prometheus.Counter
}

// New creates a cache registering its metrics with the default prometheus
// registerer.
func New(ttl time.Duration, maxEntries int) *WeatherCache {
	return NewWithRegistry(ttl, maxEntries, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a cache with metrics registered against reg.
func NewWithRegistry(ttl time.Duration, maxEntries int, reg prometheus.Registerer) *WeatherCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &WeatherCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routecast_weather_cache_hits_total",
			Help: "Total number of weather cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routecast_weather_cache_misses_total",
			Help: "Total number of weather cache misses",
		}),
	}
	reg.MustRegister(c.hits, c.misses)
	return c
}

// Key builds the cache key for a segment. The segment id alone is not unique
// because the same physical segment can be queried for different forecast
// windows; the time window disambiguates.
func Key(seg types.TripSegment) string {
	return fmt.Sprintf("%d_%s_%s",
		seg.ID,
		seg.StartTime.UTC().Format(time.RFC3339),
		seg.EndTime.UTC().Format(time.RFC3339))
}

// Get returns the cached payload for the segment's key, or a miss. Stale
// entries are evicted on access; fresh hits are promoted to most recently
// used.
func (c *WeatherCache) Get(seg types.TripSegment) (*types.SegmentWeatherData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[Key(seg)]
	if !ok {
		c.misses.Inc()
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.cachedAt) >= c.ttl {
		c.order.Remove(el)
		delete(c.items, e.key)
		c.misses.Inc()
		return nil, false
	}
	c.order.MoveToBack(el)
	c.hits.Inc()
	return e.data, true
}

// Set stores a payload, evicting the least recently used entry first when a
// new key would exceed capacity.
func (c *WeatherCache) Set(seg types.TripSegment, data *types.SegmentWeatherData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(seg)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.data = data
		e.cachedAt = c.now()
		c.order.MoveToBack(el)
		return
	}

	if c.order.Len() >= c.maxEntries {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
	c.items[key] = c.order.PushBack(&entry{key: key, data: data, cachedAt: c.now()})
}

// Clear drops all entries.
func (c *WeatherCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Stats reports current size, capacity and TTL.
func (c *WeatherCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		TotalEntries: c.order.Len(),
		MaxEntries:   c.maxEntries,
		TTL:          c.ttl,
	}
}
