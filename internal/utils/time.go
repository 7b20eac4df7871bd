package utils

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const secondsPerHour = 3600

// FormatSaleDuration renders (end - start) in hours, e.g. "1 hours". Unknown, zero or negative
// durations render as "N/A".
func FormatSaleDuration(start, end *uint64) string {
	if start == nil || end == nil || *start == 0 || *end == 0 || *end <= *start {
		return "N/A"
	}
	seconds := decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).SetUint64(*end), new(big.Int).SetUint64(*start)), 0)
	hours := seconds.Div(decimal.NewFromInt(secondsPerHour)).Truncate(2)
	return hours.String() + " hours"
}

// TimeLeft returns the whole hours and minutes remaining until end, clamped at zero.
func TimeLeft(now, end time.Time) (hours, minutes int64) {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0, 0
	}
	hours = int64(remaining / time.Hour)
	minutes = int64((remaining % time.Hour) / time.Minute)
	return hours, minutes
}

// FormatCountdown renders hours and minutes as "HH:MM".
func FormatCountdown(hours, minutes int64) string {
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
