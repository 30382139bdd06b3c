// Package identity resolves profiles and social lists through three tiers:
// an in-memory map for the session, SQLite for instant paint across
// restarts, and relays for freshness. The cache degrades, it never blanks:
// a failed or empty fetch leaves the best-known data in place.
package identity

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/fairway/internal/relay"
	"github.com/fairwaylabs/fairway/internal/round"
	"github.com/fairwaylabs/fairway/internal/store"
)

// Cache is the three-tier identity cache. Safe for concurrent use.
type Cache struct {
	db     *store.Store
	client relay.Client
	relays []string
	clock  round.Clock
	log    *logrus.Logger

	mu       sync.RWMutex
	profiles map[string]Profile
	lists    map[store.ListKind]map[string][]string
}

// NewCache builds an empty cache over the durable store and relays.
func NewCache(db *store.Store, client relay.Client, relays []string, clock round.Clock, log *logrus.Logger) *Cache {
	return &Cache{
		db:       db,
		client:   client,
		relays:   relays,
		clock:    clock,
		log:      log,
		profiles: make(map[string]Profile),
		lists:    make(map[store.ListKind]map[string][]string),
	}
}

// ResolveProfiles returns the best-known profile for each key. Memory is
// served as-is; misses are painted from SQLite, then refreshed from relays
// in one batched query. Relay results merge field-by-field over the cached
// profile, so a sparse fetch adds data without erasing any. Keys nobody
// knows anything about come back as bare profiles holding just the pubkey.
func (c *Cache) ResolveProfiles(ctx context.Context, keys []string) map[string]Profile {
	result := make(map[string]Profile, len(keys))

	var misses []string
	c.mu.RLock()
	for _, k := range keys {
		if p, ok := c.profiles[k]; ok {
			result[k] = p
		} else {
			misses = append(misses, k)
		}
	}
	c.mu.RUnlock()

	if len(misses) == 0 {
		return result
	}

	// Tier 2: durable cache paints immediately.
	for _, k := range misses {
		row, found, err := c.db.GetCachedProfile(ctx, k)
		if err != nil {
			c.log.WithField("pubkey", k).WithError(err).Warn("profile cache read failed")
		}
		if found {
			result[k] = profileFromRow(row)
		} else {
			result[k] = Profile{Pubkey: k}
		}
	}

	// Tier 3: one batched relay query for every miss.
	events, err := c.client.QuerySync(ctx, nostr.Filter{
		Kinds:   []int{relay.KindProfile},
		Authors: misses,
	}, c.relays)
	if err != nil {
		c.log.WithError(err).Warn("profile relay fetch failed, serving cached")
	} else {
		now := c.clock.Now()
		for _, ev := range events {
			incoming := parseProfileContent(ev.PubKey, []byte(ev.Content), now)
			merged := merge(result[ev.PubKey], incoming)
			result[ev.PubKey] = merged
			if err := c.db.PutCachedProfile(ctx, rowFromProfile(merged)); err != nil {
				c.log.WithField("pubkey", ev.PubKey).WithError(err).Warn("profile cache write failed")
			}
		}
	}

	c.mu.Lock()
	for _, k := range misses {
		c.profiles[k] = result[k]
	}
	c.mu.Unlock()

	return result
}

// FollowList resolves a pubkey's follow list (kind 3 p tags).
func (c *Cache) FollowList(ctx context.Context, pubkey string) []string {
	return c.resolveList(ctx, store.ListFollows, pubkey, nostr.Filter{
		Kinds:   []int{relay.KindFollowList},
		Authors: []string{pubkey},
		Limit:   1,
	}, "p")
}

// Favorites resolves a pubkey's favorites list (kind 30000, d="clubhouse").
func (c *Cache) Favorites(ctx context.Context, pubkey string) []string {
	return c.resolveList(ctx, store.ListFavorites, pubkey, nostr.Filter{
		Kinds:   []int{relay.KindFavorites},
		Authors: []string{pubkey},
		Tags:    nostr.TagMap{"d": []string{relay.FavoritesDTag}},
		Limit:   1,
	}, "p")
}

// InboxRelays resolves a pubkey's DM inbox relay list (kind 10050).
func (c *Cache) InboxRelays(ctx context.Context, pubkey string) []string {
	return c.resolveList(ctx, store.ListRelays, pubkey, nostr.Filter{
		Kinds:   []int{relay.KindInboxRelays},
		Authors: []string{pubkey},
		Limit:   1,
	}, "relay")
}

// resolveList is the shared list tiering. The replacement rule: a non-empty
// fetched list differing from cache replaces it; an empty or failed fetch
// never does.
func (c *Cache) resolveList(ctx context.Context, kind store.ListKind, pubkey string, filter nostr.Filter, tagName string) []string {
	c.mu.RLock()
	cached, inMemory := c.lists[kind][pubkey]
	c.mu.RUnlock()

	if !inMemory {
		if keysJSON, found, err := c.db.GetCachedList(ctx, kind, pubkey); err != nil {
			c.log.WithField("pubkey", pubkey).WithError(err).Warn("list cache read failed")
		} else if found {
			if err := json.Unmarshal([]byte(keysJSON), &cached); err != nil {
				c.log.WithField("pubkey", pubkey).WithError(err).Warn("list cache corrupt, ignoring")
				cached = nil
			}
		}
	}

	fetched := c.fetchList(ctx, filter, tagName)
	if len(fetched) > 0 {
		cached = fetched
		if keysJSON, err := json.Marshal(fetched); err == nil {
			if err := c.db.PutCachedList(ctx, kind, pubkey, string(keysJSON), c.clock.Now()); err != nil {
				c.log.WithField("pubkey", pubkey).WithError(err).Warn("list cache write failed")
			}
		}
	}

	c.mu.Lock()
	if c.lists[kind] == nil {
		c.lists[kind] = make(map[string][]string)
	}
	c.lists[kind][pubkey] = cached
	c.mu.Unlock()

	return cached
}

func (c *Cache) fetchList(ctx context.Context, filter nostr.Filter, tagName string) []string {
	events, err := c.client.QuerySync(ctx, filter, c.relays)
	if err != nil {
		c.log.WithError(err).Warn("list relay fetch failed, serving cached")
		return nil
	}
	if len(events) == 0 {
		return nil
	}

	var values []string
	seen := make(map[string]bool)
	for _, tag := range events[0].Tags {
		if len(tag) >= 2 && tag[0] == tagName && tag[1] != "" && !seen[tag[1]] {
			seen[tag[1]] = true
			values = append(values, tag[1])
		}
	}
	return values
}

// Invalidate drops a pubkey from the memory tier, forcing the next resolve
// through SQLite and the relays again.
func (c *Cache) Invalidate(pubkey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, pubkey)
	for _, m := range c.lists {
		delete(m, pubkey)
	}
}
