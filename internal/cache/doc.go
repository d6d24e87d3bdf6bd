// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package cache provides the bounded result cache for inference outputs.

Remote inference calls are expensive and rate limited, so every successful
sentiment score and insight bundle is cached and served from memory on
repeat requests. The cache is the first thing the inference client consults
and the only reason repeated analysis of the same feedback is cheap.

# Overview

The cache provides:
  - Named namespaces ("sentiment", "insights") with independent locks
  - Optional per-entry TTL with lazy expiry checked on read
  - Recency refresh on every hit, so hot entries survive eviction
  - Capacity eviction of the oldest tenth of a namespace in one pass
  - Key normalization that hashes oversized keys (full review texts)

# Eviction

Each namespace keeps a min-heap of its keys ordered by the time they were
last written or read. When an insert pushes a namespace past capacity, the
oldest tenth of its entries is popped and deleted in one pass while other
namespaces remain fully available.

There is no background sweeper. An entry past its TTL is removed the first
time a Get observes it, and that Get counts as a miss.

# Usage Example

	c := cache.New(10000)

	c.Put("sentiment", reviewText, result, 0)

	if v, ok := c.Get("sentiment", reviewText); ok {
	    return v.(models.SentimentResult), true
	}

	key := cache.Key("insights", texts)
	c.Put("insights", key, bundle, time.Hour)

Cache operations never fail; a miss is a normal, expected outcome.
*/
package cache
