package timecode

import (
	"fmt"
	"regexp"
	"strconv"
)

var tsRE = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})$`)

// Parse converts an "H:MM:SS" or "MM:SS" token into whole seconds. The hours
// group is optional. ok is false for tokens that do not match, so callers can
// tell "starts at 0:00" apart from "failed to parse".
func Parse(token string) (int, bool) {
	m := tsRE.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds, true
}

// Format renders whole seconds as zero-padded "HH:MM:SS".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// FormatSRT renders seconds as an SRT timestamp, "HH:MM:SS,mmm".
func FormatSRT(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	millis := int((seconds - float64(whole)) * 1000)
	return fmt.Sprintf("%s,%03d", Format(whole), millis)
}
