package cache

import "testing"

func TestMakeKeyStable(t *testing.T) {
	p := Params{Engine: "standard", Voice: "Joanna", Language: "en-US", Volume: 1}
	a := MakeKey("Hello", p)
	b := MakeKey("Hello", p)
	if a != b {
		t.Errorf("Expected identical keys, got %q and %q", a, b)
	}
	if a[0] != 'h' {
		t.Errorf("Expected key to start with h, got %q", a)
	}
}

func TestMakeKeyKnownValue(t *testing.T) {
	// "ab0" folds to 96303, which is "22b3" in base 36, followed by length 3.
	if got := MakeKey("ab", Params{}); got != "h22b33" {
		t.Errorf("Expected %q, got %q", "h22b33", got)
	}
}

func TestMakeKeyFieldSensitivity(t *testing.T) {
	base := Params{Engine: "standard", Voice: "v1", Language: "en-US", Volume: 1}
	key := MakeKey("Hello", base)

	tests := []struct {
		name   string
		mutate func(p Params) Params
	}{
		{"engine", func(p Params) Params { p.Engine = "neural"; return p }},
		{"voice", func(p Params) Params { p.Voice = "v2"; return p }},
		{"language", func(p Params) Params { p.Language = "en-GB"; return p }},
		{"volume", func(p Params) Params { p.Volume = 1.5; return p }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeKey("Hello", tt.mutate(base)); got == key {
				t.Errorf("Expected key to change when %s changes, still %q", tt.name, got)
			}
		})
	}

	if MakeKey("Hello!", base) == key {
		t.Error("Expected key to change with text")
	}
}

func TestMakeKeyNonASCII(t *testing.T) {
	p := Params{Voice: "v1"}
	if MakeKey("naïve 😀", p) == MakeKey("naive 😀", p) {
		t.Error("Expected different keys for different runes")
	}
}
