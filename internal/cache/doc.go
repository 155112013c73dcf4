// Package cache provides the small LRU cache ink uses for scaled brush
// sprites.
//
//	c := cache.New[cache.Size, *image.NRGBA](64)
//	sprite := c.GetOrCreate(cache.Size{W: 12, H: 12}, scale)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
