package subtitles

import (
	"strings"
	"testing"
)

func TestFlatten_SkipsResultsWithoutTimings(t *testing.T) {
	results := []RecognitionResult{
		{},
		{Alternatives: []Alternative{{Transcript: "no timings"}}},
		{Alternatives: []Alternative{
			{Transcript: "hello there", Words: []TimedWord{{Text: "hello", Start: 0, End: 0.4}, {Text: "there", Start: 0.4, End: 0.9}}},
			{Transcript: "hollow there", Words: []TimedWord{{Text: "hollow", Start: 0, End: 0.4}}},
		}},
		{Alternatives: []Alternative{
			{Transcript: "friend", Words: []TimedWord{{Text: "friend", Start: 1.0, End: 1.5}}},
		}},
	}

	words := Flatten(results)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d: %+v", len(words), words)
	}
	if words[0].Text != "hello" || words[2].Text != "friend" {
		t.Errorf("unexpected words: %+v", words)
	}
	if LastWordEnd(results) != 1.5 {
		t.Errorf("LastWordEnd = %v, want 1.5", LastWordEnd(results))
	}
	if got := Transcript(results); got != "no timings hello there friend" {
		t.Errorf("Transcript = %q", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("  ", 3); got != nil {
		t.Errorf("expected nil for blank transcript, got %+v", got)
	}
	if got := Fallback("hi", 0); got != nil {
		t.Errorf("expected nil for zero duration, got %+v", got)
	}
	got := Fallback(" Hi there ", 2.3456)
	if len(got) != 1 || got[0].Text != "Hi there" || got[0].Start != 0 || got[0].End != 2.346 || got[0].Duration != 2.346 {
		t.Errorf("Fallback = %+v", got)
	}
}

func TestEstimateDuration(t *testing.T) {
	script := strings.Repeat("word ", 25)
	if got := EstimateDuration(script, 2.5, 3); got != 10 {
		t.Errorf("EstimateDuration = %v, want 10", got)
	}
	if got := EstimateDuration("one two", 2.5, 3); got != 3 {
		t.Errorf("EstimateDuration short = %v, want floor 3", got)
	}
	if got := EstimateDuration(script, 0, 3); got != 3 {
		t.Errorf("EstimateDuration zero rate = %v, want floor 3", got)
	}
}

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{3725.25, "01:02:05,250"},
		{59.9996, "00:01:00,000"},
		{-1, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatSRTTime(tt.in); got != tt.want {
			t.Errorf("FormatSRTTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	if FormatSRT(nil) != "" {
		t.Error("expected empty SRT for no segments")
	}
	got := FormatSRT([]Segment{
		{Text: "Hello world.", Start: 0, End: 1},
		{Text: "Next sentence", Start: 1.5, End: 2.4},
	})
	want := "1\n00:00:00,000 --> 00:00:01,000\nHello world.\n\n2\n00:00:01,500 --> 00:00:02,400\nNext sentence\n"
	if got != want {
		t.Errorf("FormatSRT =\n%q\nwant\n%q", got, want)
	}
}
