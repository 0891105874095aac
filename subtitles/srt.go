package subtitles

import (
	"fmt"
	"math"
	"strings"
)

// FormatSRTTime converts seconds to SRT time format HH:MM:SS,mmm.
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	millis := total % 1000
	secs := total / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", secs/3600, (secs/60)%60, secs%60, millis)
}

// FormatSRT renders segments as an SRT document.
func FormatSRT(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1, FormatSRTTime(s.Start), FormatSRTTime(s.End), s.Text)
		if i < len(segments)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
