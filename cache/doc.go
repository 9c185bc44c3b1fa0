// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache stores computed election results between writes.

Results are always derived from vote records; a cache only saves repeating
the aggregation. The election service invalidates the cache on every write
that can change results, and entries also expire after a TTL.

Memory is the default and suits a single server. Redis (go-redis) lets
several servers share one entry:

	results, err := cache.NewRedis(ctx, "redis://localhost:6379/0", 5*time.Minute)

Every Invalidate starts a new generation. Load reports the generation it
saw, and Store only keeps results computed in the current one, so a tally
that raced a write never replaces the invalidation:

	cached, gen, ok, err := c.Load(ctx)
	// on a miss, tally from the database, then
	err = c.Store(ctx, gen, fresh)

A cache miss is (nil, gen, false, nil). Errors from Redis are returned so
the caller can log them and fall back to the database.
*/
package cache
