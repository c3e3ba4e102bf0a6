// Package chunk splits a text buffer into bounded, speakable pieces. It
// counts either words or sentences from an arbitrary cursor and extends
// each piece to a natural boundary so playback never stops mid-word.
package chunk
