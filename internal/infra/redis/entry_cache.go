package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bloglist/internal/domain/entry"
	"bloglist/internal/platform/cache"
)

const (
	entryListKey  = "entries:all"
	entryStatsKey = "entries:stats"

	// entryGenerationKey lives outside EntryKeyPattern so a purge never rewinds it.
	entryGenerationKey = "gen:entries"

	// EntryKeyPattern matches every payload written by EntryCache.
	EntryKeyPattern = "entries:*"
)

// EntryCache stores the full entry listing and its summary in Redis.
//
// Payloads are keyed by a generation counter that Invalidate bumps. A fill
// computed before a write therefore lands under a generation readers no
// longer consult and expires with its TTL.
type EntryCache struct {
	client bytesCacheClient
	list   snappyJSON[[]cachedEntry]
	stats  snappyJSON[cachedStats]
}

// NewEntryCache builds a cache wrapper with the provided TTL (default 5m when ttl<=0).
func NewEntryCache(client bytesCacheClient, ttl time.Duration) *EntryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EntryCache{
		client: client,
		list:   newSnappyJSON[[]cachedEntry](client, entryListKey, ttl),
		stats:  newSnappyJSON[cachedStats](client, entryStatsKey, ttl),
	}
}

type cachedOwner struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

type cachedEntry struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Author    string      `json:"author,omitempty"`
	URL       string      `json:"url"`
	Likes     int         `json:"likes"`
	Owner     cachedOwner `json:"owner"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type cachedStats struct {
	Count      int          `json:"count"`
	TotalLikes int          `json:"total_likes"`
	MostLikes  int          `json:"most_likes"`
	Favorite   *cachedEntry `json:"favorite,omitempty"`
}

func toCachedEntry(e *entry.Entry) cachedEntry {
	return cachedEntry{
		ID:        e.ID,
		Title:     e.Title,
		Author:    e.Author,
		URL:       e.URL,
		Likes:     e.Likes,
		Owner:     cachedOwner{ID: e.Owner.ID, Username: e.Owner.Username, Name: e.Owner.Name},
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (c cachedEntry) toDomain() *entry.Entry {
	return &entry.Entry{
		ID:        c.ID,
		Title:     c.Title,
		Author:    c.Author,
		URL:       c.URL,
		Likes:     c.Likes,
		Owner:     entry.Owner{ID: c.Owner.ID, Username: c.Owner.Username, Name: c.Owner.Name},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Generation returns the current generation; an unset counter is generation 0.
func (c *EntryCache) Generation(ctx context.Context) (uint64, error) {
	raw, err := c.client.GetBytes(ctx, entryGenerationKey)
	if errors.Is(err, cache.ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", entryGenerationKey, err)
	}
	return gen, nil
}

// GetList returns the listing cached under gen, if any.
func (c *EntryCache) GetList(ctx context.Context, gen uint64) ([]*entry.Entry, bool, error) {
	cached, ok, err := c.list.load(ctx, gen)
	if err != nil || !ok {
		return nil, false, err
	}
	entries := make([]*entry.Entry, len(cached))
	for i := range cached {
		entries[i] = cached[i].toDomain()
	}
	return entries, true, nil
}

// SetList caches the listing under gen.
func (c *EntryCache) SetList(ctx context.Context, gen uint64, entries []*entry.Entry) error {
	cached := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		cached = append(cached, toCachedEntry(e))
	}
	return c.list.store(ctx, gen, cached)
}

// GetStats returns the summary cached under gen, if any.
func (c *EntryCache) GetStats(ctx context.Context, gen uint64) (entry.Stats, bool, error) {
	cached, ok, err := c.stats.load(ctx, gen)
	if err != nil || !ok {
		return entry.Stats{}, false, err
	}
	stats := entry.Stats{
		Count:      cached.Count,
		TotalLikes: cached.TotalLikes,
		MostLikes:  cached.MostLikes,
	}
	if cached.Favorite != nil {
		stats.Favorite = cached.Favorite.toDomain()
	}
	return stats, true, nil
}

// SetStats caches the summary under gen.
func (c *EntryCache) SetStats(ctx context.Context, gen uint64, stats entry.Stats) error {
	cached := cachedStats{
		Count:      stats.Count,
		TotalLikes: stats.TotalLikes,
		MostLikes:  stats.MostLikes,
	}
	if stats.Favorite != nil {
		fav := toCachedEntry(stats.Favorite)
		cached.Favorite = &fav
	}
	return c.stats.store(ctx, gen, cached)
}

// Invalidate moves readers to a fresh generation.
func (c *EntryCache) Invalidate(ctx context.Context) error {
	_, err := c.client.Incr(ctx, entryGenerationKey)
	return err
}
