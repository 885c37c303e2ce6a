package main

import (
	"fmt"
	"strings"
)

// Action is the kind of event an entry records.
type Action string

const (
	ActionIn   Action = "in"
	ActionOut  Action = "out"
	ActionTask Action = "task"
)

// ParseAction accepts only the three known actions.
func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

func (a Action) Valid() bool {
	switch a {
	case ActionIn, ActionOut, ActionTask:
		return true
	}
	return false
}

// Status is the derived clocking state of a single day.
type Status int

const (
	StatusNone Status = iota
	StatusIn
	StatusOut
)

func (s Status) String() string {
	switch s {
	case StatusIn:
		return "in"
	case StatusOut:
		return "out"
	default:
		return "none"
	}
}

// Entry is one row of a month partition. ID is the storage row id and is
// only set on entries read back from the database.
type Entry struct {
	ID     int64
	Date   string
	Time   string
	Action Action
	Note   string
}

// Matches compares the persisted fields, ignoring ID.
func (e Entry) Matches(o Entry) bool {
	return e.Date == o.Date && e.Time == o.Time && e.Action == o.Action && e.Note == o.Note
}
