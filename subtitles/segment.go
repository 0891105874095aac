package subtitles

import (
	"math"
	"strings"
	"unicode/utf8"
)

// lineBuffer accumulates words for the line being built.
type lineBuffer struct {
	text  string
	start float64
	open  bool
}

// Split packs timed words into subtitle lines.
//
// A line is closed before the next word when the joined text would exceed
// MaxCharsPerLine, when the word would end more than MaxLineDuration after the
// line started, or when the previous word ended a sentence and the line is
// already longer than ShortFragmentChars. A closed line ends at the previous
// word's end. Lines shorter than MinLineDuration are dropped, not merged.
func Split(words []TimedWord, cfg Config) []Segment {
	if len(words) == 0 {
		return nil
	}

	var (
		segments []Segment
		line     lineBuffer
		lastEnd  float64
		prevText string
	)

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			// Blank tokens add no text but still advance the line end.
			lastEnd = w.End
			continue
		}

		if !line.open {
			line = lineBuffer{start: w.Start, open: true}
		}

		if line.text != "" && cfg.shouldBreak(line, text, w.End, prevText) {
			if seg, ok := cfg.close(line, lastEnd); ok {
				segments = append(segments, seg)
			}
			line = lineBuffer{text: text, start: w.Start, open: true}
		} else if line.text == "" {
			line.text = text
		} else {
			line.text += " " + text
		}

		lastEnd = w.End
		prevText = text
	}

	if line.text != "" {
		if seg, ok := cfg.close(line, lastEnd); ok {
			segments = append(segments, seg)
		}
	}

	return segments
}

func (c Config) shouldBreak(line lineBuffer, word string, wordEnd float64, prev string) bool {
	candidate := line.text + " " + word
	if utf8.RuneCountInString(candidate) > c.MaxCharsPerLine {
		return true
	}
	if wordEnd-line.start > c.MaxLineDuration {
		return true
	}
	return c.endsSentence(prev) && utf8.RuneCountInString(line.text) > c.ShortFragmentChars
}

func (c Config) endsSentence(word string) bool {
	if word == "" || c.SentenceEnd == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(word)
	return strings.ContainsRune(c.SentenceEnd, last)
}

// close finalizes a line ending at end. It reports false when the line is
// shorter than the minimum duration.
func (c Config) close(line lineBuffer, end float64) (Segment, bool) {
	start := roundMillis(line.start)
	end = roundMillis(end)
	duration := roundMillis(end - start)
	if duration < c.MinLineDuration {
		return Segment{}, false
	}
	return Segment{
		Text:     strings.TrimSpace(line.text),
		Start:    start,
		End:      end,
		Duration: duration,
	}, true
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
