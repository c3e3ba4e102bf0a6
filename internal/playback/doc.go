// Package playback drives chunked text-to-speech. A Controller owns the
// read cursor and the audio cache, and runs one session at a time: a
// single step, a full sequence, or a cache-warming pregeneration pass.
// Starting any operation aborts the session before it, and aborting
// cancels the in-flight synthesis call and the audio sink together.
//
// Operations take a Config value per call. A Config that differs from the
// previous one resets the cursor and clears the cache, as does SetText.
package playback
