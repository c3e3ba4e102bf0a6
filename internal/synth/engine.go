package synth

import (
	"fmt"
	"sort"
	"strings"
)

// Engine selects the speech backend used by the remote service.
type Engine string

const (
	// EngineOpenAI uses the OpenAI speech voices.
	EngineOpenAI Engine = "openai"
	// EngineGoogle uses Google Cloud voices, which need a language code.
	EngineGoogle Engine = "google"
)

// DefaultVoice and DefaultVolume match the backend defaults.
const (
	DefaultVoice    = "nova"
	DefaultVolume   = 4.0
	DefaultLanguage = "en-US"
)

// ParseEngine parses an engine name.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "openai":
		return EngineOpenAI, nil
	case "google", "gcp":
		return EngineGoogle, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidEngine, s)
	}
}

// Voice is a selectable voice.
type Voice struct {
	ID     string
	Label  string
	Engine Engine
}

var catalog = map[Engine][]Voice{
	EngineOpenAI: {
		{ID: "alloy", Label: "Alloy"},
		{ID: "echo", Label: "Echo"},
		{ID: "fable", Label: "Fable"},
		{ID: "onyx", Label: "Onyx"},
		{ID: "nova", Label: "Nova"},
		{ID: "shimmer", Label: "Shimmer"},
	},
	EngineGoogle: {
		{ID: "en-US-Studio-O", Label: "en-US-Studio-O (Female)"},
		{ID: "en-US-Studio-Q", Label: "en-US-Studio-Q (Male)"},
		{ID: "en-GB-News-K", Label: "en-GB-News-K (Female)"},
		{ID: "en-GB-News-L", Label: "en-GB-News-L (Male)"},
		{ID: "en-AU-Neural2-A", Label: "en-AU-Neural2-A (Female)"},
		{ID: "en-AU-Neural2-B", Label: "en-AU-Neural2-B (Male)"},
		{ID: "tr-TR-Standard-A", Label: "tr-TR-Standard-A (Female)"},
		{ID: "tr-TR-Standard-B", Label: "tr-TR-Standard-B (Male)"},
		{ID: "cmn-CN-Wavenet-A", Label: "cmn-CN-Wavenet-A (Female)"},
		{ID: "cmn-CN-Wavenet-B", Label: "cmn-CN-Wavenet-B (Male)"},
	},
}

// Voices returns the known voices for an engine. An empty engine returns
// every voice, ordered by engine name.
func Voices(e Engine) []Voice {
	if e != "" {
		return withEngine(e, catalog[e])
	}

	engines := make([]string, 0, len(catalog))
	for k := range catalog {
		engines = append(engines, string(k))
	}
	sort.Strings(engines)

	var all []Voice
	for _, k := range engines {
		all = append(all, withEngine(Engine(k), catalog[Engine(k)])...)
	}
	return all
}

func withEngine(e Engine, vs []Voice) []Voice {
	out := make([]Voice, len(vs))
	for i, v := range vs {
		v.Engine = e
		out[i] = v
	}
	return out
}

// LanguageFromVoice extracts the language code prefix of a Google voice
// name such as "en-GB-News-K". It returns "" if the name has no such
// prefix.
func LanguageFromVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}
