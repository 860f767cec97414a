package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the size of the minute ring a day-wrapping range lives on.
const MinutesPerDay = 1440

// TimeOfDay is a clock time expressed as whole minutes since local
// midnight, in the range [0, MinutesPerDay).
type TimeOfDay int

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// Clock renders the zero-padded 24-hour "HH:MM" form.
func (t TimeOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return t.Clock()
}

// ParseClock parses a zero-padded 24-hour "HH:MM" or "HH:MM:SS" string.
// Seconds, when present, are validated and truncated.
func ParseClock(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &ParseError{Input: s, Reason: "expected HH:MM or HH:MM:SS"}
	}

	for _, p := range parts {
		if len(p) != 2 {
			return 0, &ParseError{Input: s, Reason: "fields must be zero-padded to two digits"}
		}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, &ParseError{Input: s, Reason: "hour out of range"}
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, &ParseError{Input: s, Reason: "minute out of range"}
	}

	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, &ParseError{Input: s, Reason: "second out of range"}
		}
	}

	return TimeOfDay(hour*60 + minute), nil
}

// MarshalJSON renders the "HH:MM" wire form; interfaces exchange clock
// strings, internal computation stays in minutes.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Clock())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &ParseError{Input: string(data), Reason: "expected a clock string"}
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeRange is a half-open range of day minutes. A range whose end is
// less than or equal to its start wraps across midnight.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (r TimeRange) Wraps() bool {
	return r.End <= r.Start
}

// Minutes returns the duration in minutes using ring arithmetic, so a
// wrapping range measures its span across midnight.
func (r TimeRange) Minutes() int {
	return (int(r.End) - int(r.Start) + MinutesPerDay) % MinutesPerDay
}

// MinutesStrict is Minutes for contexts where day-wrap is disallowed.
func (r TimeRange) MinutesStrict() (int, error) {
	if r.Wraps() {
		return 0, &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return int(r.End) - int(r.Start), nil
}

// segments splits the range into at most two linear half-open segments,
// [start, 1440) and [0, end), so overlap tests never reason about wrap.
func (r TimeRange) segments() []TimeRange {
	if !r.Wraps() {
		return []TimeRange{r}
	}
	segs := []TimeRange{{Start: r.Start, End: MinutesPerDay}}
	if r.End > 0 {
		segs = append(segs, TimeRange{Start: 0, End: r.End})
	}
	return segs
}

// Overlaps reports whether the two ranges share at least one minute.
func (r TimeRange) Overlaps(other TimeRange) bool {
	for _, a := range r.segments() {
		for _, b := range other.segments() {
			if a.Start < b.End && b.Start < a.End {
				return true
			}
		}
	}
	return false
}
