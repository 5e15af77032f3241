package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

const (
	// SlotMinutes is the scheduling quantum.
	SlotMinutes = 30

	minutesPerDay = 24 * 60
)

// Window is a half-open time-of-day interval in minutes since midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the window length in minutes.
func (w Window) Len() int {
	return w.End - w.Start
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock hour %q: %w", raw, err)
	}
	minutes := 0
	if len(parts) == 2 && parts[1] != "" {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("invalid clock minute %q: %w", raw, err)
		}
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", raw)
	}
	total := hours*60 + minutes
	if total > minutesPerDay {
		return 0, fmt.Errorf("clock value %q out of range", raw)
	}
	return total, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AllowedWindows returns the day's enabled window minus the protected window.
// A protected window that wraps midnight is removed as [start, 1440) and [0, end].
func AllowedWindows(day models.DayAvailability, protected models.TimeWindow) ([]Window, error) {
	start, err := ParseClock(day.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(day.End)
	if err != nil {
		return nil, err
	}
	windows := []Window{{Start: start, End: end}}

	if protected.Start == "" && protected.End == "" {
		return windows, nil
	}
	ps, err := ParseClock(protected.Start)
	if err != nil {
		return nil, err
	}
	pe, err := ParseClock(protected.End)
	if err != nil {
		return nil, err
	}
	if ps == pe {
		return windows, nil
	}

	if ps < pe {
		windows = subtractAll(windows, Window{Start: ps, End: pe})
	} else {
		windows = subtractAll(windows, Window{Start: ps, End: minutesPerDay})
		windows = subtractAll(windows, Window{Start: 0, End: pe})
	}

	result := windows[:0]
	for _, w := range windows {
		w.Start = clamp(w.Start, 0, minutesPerDay)
		w.End = clamp(w.End, 0, minutesPerDay)
		if w.Len() >= SlotMinutes {
			result = append(result, w)
		}
	}
	return result, nil
}

// Slots slices windows into grid-aligned slots. A window start is rounded up to the next multiple
// of SlotMinutes before slicing.
func Slots(windows []Window) []Window {
	var slots []Window
	for _, w := range windows {
		t := w.Start
		if rem := t % SlotMinutes; rem != 0 {
			t += SlotMinutes - rem
		}
		for t+SlotMinutes <= w.End {
			slots = append(slots, Window{Start: t, End: t + SlotMinutes})
			t += SlotMinutes
		}
	}
	return slots
}

func subtractAll(windows []Window, forbid Window) []Window {
	out := make([]Window, 0, len(windows)+1)
	for _, w := range windows {
		out = append(out, subtract(w, forbid)...)
	}
	return out
}

func subtract(base, forbid Window) []Window {
	if forbid.End <= base.Start || forbid.Start >= base.End {
		return []Window{base}
	}
	var out []Window
	if forbid.Start > base.Start {
		out = append(out, Window{Start: base.Start, End: clamp(forbid.Start, base.Start, base.End)})
	}
	if forbid.End < base.End {
		out = append(out, Window{Start: clamp(forbid.End, base.Start, base.End), End: base.End})
	}
	return out
}

func trimEnd(windows []Window, cutoff int) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.End > cutoff {
			w.End = cutoff
		}
		if w.Len() >= SlotMinutes {
			out = append(out, w)
		}
	}
	return out
}

func trimStart(windows []Window, cutoff int) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Start < cutoff {
			w.Start = cutoff
		}
		if w.Len() >= SlotMinutes {
			out = append(out, w)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// --- calendar helpers ---

// DayKey formats the calendar day of t in its own location as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func atMinute(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, day.Location())
}
