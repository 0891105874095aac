package subtitles

import (
	"reflect"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		MaxCharsPerLine:    40,
		MaxLineDuration:    5.0,
		MinLineDuration:    0.5,
		SentenceEnd:        ".!?",
		ShortFragmentChars: 10,
	}
}

func TestSplit_Empty(t *testing.T) {
	if got := Split(nil, testConfig()); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestSplit_BreaksAfterSentenceEnd(t *testing.T) {
	words := []TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.5},
		{Text: "world.", Start: 0.5, End: 1.0},
		{Text: "Next", Start: 1.5, End: 1.8},
		{Text: "sentence", Start: 1.8, End: 2.4},
	}

	got := Split(words, testConfig())
	want := []Segment{
		{Text: "Hello world.", Start: 0.0, End: 1.0, Duration: 1.0},
		{Text: "Next sentence", Start: 1.5, End: 2.4, Duration: 0.9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split() = %+v, want %+v", got, want)
	}
}

func TestSplit_DropsLineBelowMinimum(t *testing.T) {
	words := []TimedWord{
		{Text: "Supercalifragilisticexpialidocious", Start: 0.0, End: 0.05},
	}
	if got := Split(words, testConfig()); len(got) != 0 {
		t.Fatalf("expected no segments, got %+v", got)
	}
}

func TestSplit_ShortFragmentDoesNotBreak(t *testing.T) {
	// "Mr." ends with a period but the line is too short to close.
	words := []TimedWord{
		{Text: "Mr.", Start: 0.0, End: 0.4},
		{Text: "Smith", Start: 0.4, End: 0.9},
		{Text: "arrived", Start: 0.9, End: 1.5},
	}
	got := Split(words, testConfig())
	if len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Mr. Smith arrived" {
		t.Errorf("text = %q, want %q", got[0].Text, "Mr. Smith arrived")
	}
}

func TestSplit_CharacterLimit(t *testing.T) {
	words := []TimedWord{
		{Text: "aaaaaaaaaa", Start: 0.0, End: 0.5},
		{Text: "bbbbbbbbbb", Start: 0.5, End: 1.0},
		{Text: "cccccccccc", Start: 1.0, End: 1.5},
		{Text: "dddddddddd", Start: 1.5, End: 2.0},
	}
	got := Split(words, testConfig())
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(got), got)
	}
	if got[0].Text != "aaaaaaaaaa bbbbbbbbbb cccccccccc" {
		t.Errorf("first line = %q", got[0].Text)
	}
	if got[0].End != 1.5 || got[1].Start != 1.5 {
		t.Errorf("boundary = [%v, %v], want [1.5, 1.5]", got[0].End, got[1].Start)
	}
	for _, s := range got {
		if len(s.Text) > 40 {
			t.Errorf("line %q exceeds 40 chars", s.Text)
		}
	}
}

func TestSplit_DurationLimitUsesWordEnd(t *testing.T) {
	words := []TimedWord{
		{Text: "one", Start: 0.0, End: 1.0},
		{Text: "two", Start: 1.0, End: 4.0},
		// Starts inside the limit but ends past it.
		{Text: "three", Start: 4.5, End: 5.5},
	}
	got := Split(words, testConfig())
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %+v", got)
	}
	if got[0].Text != "one two" || got[0].End != 4.0 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Text != "three" || got[1].Start != 4.5 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestSplit_LongSingleWordKept(t *testing.T) {
	words := []TimedWord{
		{Text: "Hmmmmmmm", Start: 0.0, End: 9.0},
		{Text: "okay", Start: 9.0, End: 9.6},
	}
	got := Split(words, testConfig())
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %+v", got)
	}
	if got[0].Text != "Hmmmmmmm" || got[0].Duration != 9.0 {
		t.Errorf("first = %+v, want one-word 9s line", got[0])
	}
}

func TestSplit_DroppedLineKeepsLaterWords(t *testing.T) {
	// "Absolutely." closes after 0.3s and is dropped; the next line survives.
	words := []TimedWord{
		{Text: "Absolutely.", Start: 0.0, End: 0.3},
		{Text: "Go", Start: 0.3, End: 0.6},
		{Text: "now", Start: 0.6, End: 1.2},
	}
	got := Split(words, testConfig())
	want := []Segment{{Text: "Go now", Start: 0.3, End: 1.2, Duration: 0.9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split() = %+v, want %+v", got, want)
	}
}

func TestSplit_SkipsBlankWords(t *testing.T) {
	words := []TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.4},
		{Text: "  ", Start: 0.4, End: 0.5},
		{Text: "there", Start: 0.5, End: 1.0},
	}
	got := Split(words, testConfig())
	if len(got) != 1 || got[0].Text != "Hello there" {
		t.Fatalf("Split() = %+v", got)
	}
}

func TestSplit_TrailingBlankWordAdvancesEnd(t *testing.T) {
	words := []TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.4},
		{Text: "there", Start: 0.4, End: 1.0},
		{Text: "", Start: 1.0, End: 1.3},
	}
	got := Split(words, testConfig())
	want := []Segment{{Text: "Hello there", Start: 0.0, End: 1.3, Duration: 1.3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split() = %+v, want %+v", got, want)
	}
}

func TestSplit_Properties(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. It was not amused! " +
		"Then again, who would be? Foxes are known for their agility and speed " +
		"while dogs are known for naps. Short. Sentences. Everywhere here."
	var words []TimedWord
	t0 := 0.0
	for i, tok := range strings.Fields(text) {
		d := 0.18 + float64(len(tok))*0.03
		if i%7 == 0 {
			t0 += 0.4
		}
		words = append(words, TimedWord{Text: tok, Start: t0, End: t0 + d})
		t0 += d
	}

	cfg := testConfig()
	got := Split(words, cfg)
	if len(got) == 0 {
		t.Fatal("expected segments")
	}

	var joined []string
	for i, s := range got {
		if s.Duration < cfg.MinLineDuration {
			t.Errorf("segment %d duration %v below minimum", i, s.Duration)
		}
		if s.End < s.Start {
			t.Errorf("segment %d ends before it starts", i)
		}
		if i > 0 && s.Start < got[i-1].End {
			t.Errorf("segment %d overlaps previous: %v < %v", i, s.Start, got[i-1].End)
		}
		if len(s.Text) > cfg.MaxCharsPerLine {
			t.Errorf("segment %d too long: %q", i, s.Text)
		}
		joined = append(joined, s.Text)
	}
	if strings.Join(joined, " ") != strings.Join(strings.Fields(text), " ") {
		t.Errorf("segments do not reproduce the words:\n%s", strings.Join(joined, "|"))
	}

	again := Split(words, cfg)
	if !reflect.DeepEqual(got, again) {
		t.Error("Split is not deterministic")
	}
}
