package subtitles

// TimedWord is a single recognized word with its offsets in seconds.
type TimedWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one subtitle line.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start_seconds"`
	End      float64 `json:"end_seconds"`
	Duration float64 `json:"duration_seconds"`
}

// Alternative is one recognition hypothesis for an utterance.
type Alternative struct {
	Transcript string      `json:"transcript"`
	Confidence float64     `json:"confidence"`
	Words      []TimedWord `json:"words"`
}

// RecognitionResult is one recognized utterance, best alternative first.
type RecognitionResult struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Config holds the line-packing limits used by Segment.
type Config struct {
	MaxCharsPerLine int
	MaxLineDuration float64
	MinLineDuration float64
	// SentenceEnd lists the characters that end a sentence.
	SentenceEnd string
	// ShortFragmentChars is how long a line must be before a sentence end may close it.
	ShortFragmentChars int
}

// DefaultConfig returns the limits the service runs with.
func DefaultConfig() Config {
	return Config{
		MaxCharsPerLine:    42,
		MaxLineDuration:    7.0,
		MinLineDuration:    0.5,
		SentenceEnd:        ".!?",
		ShortFragmentChars: 10,
	}
}
