package main

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var partitionNameRe = regexp.MustCompile(`^data_(\d{4})_(\d{2})$`)

// PartitionName returns the table holding the entries of the given month.
func PartitionName(month time.Month, year int) string {
	return fmt.Sprintf("data_%04d_%02d", year, int(month))
}

// PartitionForDate returns the partition the given day belongs to.
func PartitionForDate(t time.Time) string {
	return PartitionName(t.Month(), t.Year())
}

// ParsePartitionName is the inverse of PartitionName. Anything PartitionName
// cannot produce is rejected, which also makes the result safe to splice
// into SQL.
func ParsePartitionName(name string) (time.Month, int, error) {
	m := partitionNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPartitionName, name)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if year < 1000 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPartitionName, name)
	}

	return time.Month(month), year, nil
}

// partitionTitle renders a partition as "March 2024".
func partitionTitle(name string) string {
	month, year, err := ParsePartitionName(name)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s %d", month, year)
}
