package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp, use seconds, mm:ss or hh:mm:ss")

// FormatDuration formats a duration as mm:ss, or hh:mm:ss when it spans an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ParseTimestamp parses "90", "1:30" or "1:02:03" into a duration.
func ParseTimestamp(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, ErrInvalidTimestamp
	}

	parts := strings.Split(input, ":")
	if len(parts) > 3 {
		return 0, ErrInvalidTimestamp
	}

	var total int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, ErrInvalidTimestamp
		}
		// Minutes and seconds after the leading component must stay below 60.
		if i > 0 && n >= 60 {
			return 0, ErrInvalidTimestamp
		}
		total = total*60 + n
	}

	return time.Duration(total) * time.Second, nil
}
