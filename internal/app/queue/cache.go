package queue

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/minutemix/minutemix/internal/domain/track"
)

// TrackCache is a bounded TTL cache of fetched playlist contents,
// shared across per-session services so repeated builds against the
// same playlist skip the API. Cached slices are read-only; selection
// always copies before reordering.
type TrackCache struct {
	lru *expirable.LRU[string, []track.Track]
}

// NewTrackCache creates a cache holding up to size playlists for ttl.
func NewTrackCache(size int, ttl time.Duration) *TrackCache {
	return &TrackCache{
		lru: expirable.NewLRU[string, []track.Track](size, nil, ttl),
	}
}

func (c *TrackCache) get(playlistID string) ([]track.Track, bool) {
	return c.lru.Get(playlistID)
}

func (c *TrackCache) put(playlistID string, tracks []track.Track) {
	c.lru.Add(playlistID, tracks)
}
