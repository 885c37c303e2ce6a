package main

import (
	"errors"
	"fmt"
)

var (
	ErrPartitionNotFound    = errors.New("partition not found")
	ErrInvalidPartitionName = errors.New("invalid partition name")
	ErrInvalidAction        = errors.New("invalid action")
	ErrInvalidYear          = errors.New("invalid year")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime          = errors.New("invalid time, expected HH:MM")
	ErrInvalidNote          = errors.New("note cannot contain line breaks")
	ErrUnequalInOut         = errors.New("unequal number of clock-ins and clock-outs")
)

// InvalidMonthError is returned when user input does not resolve to a month.
type InvalidMonthError struct {
	Value string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month: %s", e.Value)
}

// MalformedLineError reports the first line of an edited partition that does
// not describe a valid entry.
type MalformedLineError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}
