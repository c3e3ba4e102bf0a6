// Package audio plays synthesized audio handles. A Sink blocks until the
// handle has finished playing and stops at once when its context is
// cancelled or Stop is called. Decoding is left to an external player.
package audio
