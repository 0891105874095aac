package subtitles

import "strings"

// Flatten collects the words of the best alternative of every result in order.
// Results with no alternative, or whose best alternative has no word timings,
// are skipped.
func Flatten(results []RecognitionResult) []TimedWord {
	var words []TimedWord
	for _, r := range results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		if len(best.Words) == 0 {
			continue
		}
		words = append(words, best.Words...)
	}
	return words
}

// Transcript joins the best-alternative transcripts of all results.
func Transcript(results []RecognitionResult) string {
	var parts []string
	for _, r := range results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// LastWordEnd returns the end offset of the final timed word, or 0.
func LastWordEnd(results []RecognitionResult) float64 {
	words := Flatten(results)
	if len(words) == 0 {
		return 0
	}
	return words[len(words)-1].End
}

// Fallback covers a transcript that produced no timed lines with a single
// segment spanning the whole audio. It returns nil when there is nothing to show.
func Fallback(transcript string, duration float64) []Segment {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" || duration <= 0 {
		return nil
	}
	d := roundMillis(duration)
	return []Segment{{Text: transcript, Start: 0, End: d, Duration: d}}
}

// EstimateDuration guesses speech length from the script's word count. The
// result is never below floor.
func EstimateDuration(script string, wordsPerSecond, floor float64) float64 {
	if wordsPerSecond <= 0 {
		return floor
	}
	n := len(strings.Fields(script))
	est := roundMillis(float64(n) / wordsPerSecond)
	if est < floor {
		return floor
	}
	return est
}
