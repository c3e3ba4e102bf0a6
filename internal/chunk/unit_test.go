package chunk

import (
	"errors"
	"testing"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    Unit
		wantErr bool
	}{
		{"words", Words, false},
		{"Word", Words, false},
		{"sentences", Sentences, false},
		{" sentence ", Sentences, false},
		{"paragraphs", Words, true},
	}
	for _, tt := range tests {
		got, err := ParseUnit(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestUnitText(t *testing.T) {
	var u Unit
	if err := u.UnmarshalText([]byte("sentences")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if u != Sentences {
		t.Errorf("Expected Sentences, got %v", u)
	}
	b, _ := u.MarshalText()
	if string(b) != "sentences" {
		t.Errorf("Expected %q, got %q", "sentences", b)
	}
	if err := u.UnmarshalText([]byte("lines")); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("Expected ErrInvalidUnit, got %v", err)
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		in   int
		want int
	}{
		{"words default carried to sentences", Sentences, 10, 1},
		{"small sentence count kept", Sentences, 3, 3},
		{"zero sentences", Sentences, 0, 1},
		{"sentence count carried to words", Words, 1, 10},
		{"word count in range", Words, 25, 25},
		{"word count too large", Words, 500, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCount(tt.unit, tt.in); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOptionsWithUnit(t *testing.T) {
	opts := DefaultOptions().WithUnit(Sentences)
	if opts.Unit != Sentences || opts.Count != 1 {
		t.Errorf("Expected 1 sentence, got %+v", opts)
	}
	if err := (Options{Unit: Words, Count: 0}).Validate(); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("Expected ErrInvalidCount, got %v", err)
	}
}
