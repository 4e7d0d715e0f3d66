package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidClockTime = errors.New("invalid clock time")

// UntilClockTime returns how long from now until the next hours:minutes on
// the wall clock in now's location. Meridiem is "am", "pm" or empty for a
// 24-hour time. A time already passed today means tomorrow.
func UntilClockTime(now time.Time, hours, minutes int, meridiem string) (time.Duration, error) {
	h, err := to24Hour(hours, meridiem)
	if err != nil {
		return 0, err
	}
	if minutes < 0 || minutes >= 60 {
		return 0, fmt.Errorf("%w: minutes %d", ErrInvalidClockTime, minutes)
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), h, minutes, 0, 0, now.Location())
	if target.Before(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now), nil
}

func to24Hour(hours int, meridiem string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(meridiem)) {
	case "":
		if hours < 0 || hours >= 24 {
			return 0, fmt.Errorf("%w: hours %d", ErrInvalidClockTime, hours)
		}
		return hours, nil
	case "am":
		if hours < 1 || hours > 12 {
			return 0, fmt.Errorf("%w: hours %d am", ErrInvalidClockTime, hours)
		}
		return hours % 12, nil
	case "pm":
		if hours < 1 || hours > 12 {
			return 0, fmt.Errorf("%w: hours %d pm", ErrInvalidClockTime, hours)
		}
		return hours%12 + 12, nil
	default:
		return 0, fmt.Errorf("%w: meridiem %q", ErrInvalidClockTime, meridiem)
	}
}

// FormatClock renders a duration the way a scoreboard shows it: M:SS,
// rounding partial seconds up so a running clock reads 0:01 until it hits zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
