// Package cache maps synthesized chunks to their audio handles. Keys are
// a stable fingerprint of the chunk text and the synthesis parameters, so
// the same request never reaches the backend twice while the cache lives.
package cache
