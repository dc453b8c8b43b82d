// Package cache provides a byte-bounded LRU for recorded reply bodies.
//
// Cached bytes are accounted against a resource.Controller when one is
// supplied, so cached replies and parse arenas share one memory budget.
package cache
