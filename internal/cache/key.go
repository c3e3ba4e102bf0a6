package cache

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Params are the synthesis settings that take part in the cache key.
// Changing any field yields a different key.
type Params struct {
	Engine   string  `json:"engine" mapstructure:"engine"`
	Voice    string  `json:"voice" mapstructure:"voice"`
	Language string  `json:"language" mapstructure:"language"`
	Volume   float64 `json:"volume" mapstructure:"volume"`
}

// Key identifies a cached audio handle.
type Key string

// MakeKey fingerprints trimmed chunk text together with params. The fields
// are concatenated in a fixed order and folded with a 32-bit rolling hash
// over UTF-16 code units; the unit count is appended to make collisions
// less likely. The hash is not cryptographic.
func MakeKey(trimmed string, p Params) Key {
	var b strings.Builder
	b.WriteString(trimmed)
	b.WriteString(p.Engine)
	b.WriteString(p.Voice)
	b.WriteString(p.Language)
	b.WriteString(strconv.FormatFloat(p.Volume, 'f', -1, 64))

	units := utf16.Encode([]rune(b.String()))

	var h int32
	for _, u := range units {
		h = (h << 5) - h + int32(u)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	return Key("h" + strconv.FormatInt(abs, 36) + strconv.Itoa(len(units)))
}
