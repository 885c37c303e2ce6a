package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var monthTitle = cases.Title(language.English)

// NormalizeMonth resolves user input to a month. Accepted forms, in order:
// "current", "-N" (N months before now, within the same year), a number
// 1-12, or an English month name in any case.
func NormalizeMonth(input string, now time.Time) (time.Month, error) {
	s := strings.TrimSpace(input)

	if strings.EqualFold(s, "current") {
		return now.Month(), nil
	}

	if rest, ok := strings.CutPrefix(s, "-"); ok && isDigits(rest) {
		offset, err := strconv.Atoi(rest)
		if err != nil {
			return 0, &InvalidMonthError{Value: input}
		}
		m := int(now.Month()) - offset
		if m < 1 || m > 12 {
			return 0, &InvalidMonthError{Value: input}
		}
		return time.Month(m), nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, &InvalidMonthError{Value: input}
		}
		return time.Month(n), nil
	}

	name := monthTitle.String(s)
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, nil
		}
	}

	return 0, &InvalidMonthError{Value: input}
}

// ParseYear accepts a four digit year; empty input means the current year.
func ParseYear(input string, now time.Time) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return now.Year(), nil
	}
	if len(s) != 4 || !isDigits(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, input)
	}
	year, _ := strconv.Atoi(s)
	if year < 1000 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, input)
	}
	return year, nil
}

// ResolvePartition turns month and year flags into a partition name.
func ResolvePartition(month, year string, now time.Time) (string, error) {
	m, err := NormalizeMonth(month, now)
	if err != nil {
		return "", err
	}
	y, err := ParseYear(year, now)
	if err != nil {
		return "", err
	}
	return PartitionName(m, y), nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func ParseClock(s string) (time.Time, error) {
	if len(s) != len(clockLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t, nil
}

// minutesOfDay converts an HH:MM clock value to minutes after midnight.
func minutesOfDay(s string) (int, error) {
	t, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
