package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LedgerConfig is derived once per invocation.
type LedgerConfig struct {
	// Now is the invocation time, used for defaulted dates and times.
	Now time.Time
	// DefaultPartition is the partition of Now's month when left empty.
	DefaultPartition string
}

// Ledger implements the clocking rules on top of a Repo.
type Ledger struct {
	repo *Repo
	cfg  LedgerConfig
}

func NewLedger(repo *Repo, cfg LedgerConfig) *Ledger {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.DefaultPartition == "" {
		cfg.DefaultPartition = PartitionForDate(cfg.Now)
	}
	return &Ledger{repo: repo, cfg: cfg}
}

func (l *Ledger) DefaultPartition() string {
	return l.cfg.DefaultPartition
}

func (l *Ledger) Now() time.Time {
	return l.cfg.Now
}

// Today is the invocation date as stored in entries.
func (l *Ledger) Today() string {
	return l.cfg.Now.Format(dateLayout)
}

// NewEntry validates and fills in an entry. Empty date and clock default to
// the invocation time.
func (l *Ledger) NewEntry(note string, action Action, date, clock string) (Entry, error) {
	if !action.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if strings.ContainsAny(note, "\r\n") {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidNote, note)
	}
	if date == "" {
		date = l.cfg.Now.Format(dateLayout)
	}
	if clock == "" {
		clock = l.cfg.Now.Format(clockLayout)
	}
	if _, err := ParseDate(date); err != nil {
		return Entry{}, err
	}
	if _, err := ParseClock(clock); err != nil {
		return Entry{}, err
	}

	return Entry{Date: date, Time: clock, Action: action, Note: note}, nil
}

// AddEntry appends an entry. With an empty partition the entry goes to the
// partition of its own date, which is created if needed.
func (l *Ledger) AddEntry(ctx context.Context, partition, note string, action Action, date, clock string) (Entry, error) {
	e, err := l.NewEntry(note, action, date, clock)
	if err != nil {
		return Entry{}, err
	}

	if partition == "" {
		day, _ := ParseDate(e.Date)
		partition = PartitionForDate(day)
		if _, err := l.repo.CreatePartition(ctx, partition); err != nil {
			return Entry{}, err
		}
	}

	if err := l.repo.AppendRow(ctx, partition, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// StatusForDate replays the in and out entries of one day in order; the last
// one decides. Task entries do not change the status.
func (l *Ledger) StatusForDate(ctx context.Context, date, partition string) (Status, error) {
	entries, err := l.repo.ReadAllRows(ctx, partition)
	if err != nil {
		return StatusNone, err
	}

	status := StatusNone
	for _, e := range entries {
		if e.Date != date {
			continue
		}
		switch e.Action {
		case ActionIn:
			status = StatusIn
		case ActionOut:
			status = StatusOut
		}
	}

	return status, nil
}

// SummarizeDuration totals the time clocked against a note as the sum of
// all out times minus the sum of all in times. Pairs are not matched, so
// the result is only meaningful for same-day in/out pairs that do not cross
// midnight. Mismatched counts yield ErrUnequalInOut.
func (l *Ledger) SummarizeDuration(ctx context.Context, note, partition string) (string, error) {
	entries, err := l.repo.ReadAllRows(ctx, partition)
	if err != nil {
		return "", err
	}

	var matched []Entry
	var ins, outs int
	for _, e := range entries {
		if e.Note != note {
			continue
		}
		switch e.Action {
		case ActionIn:
			ins++
		case ActionOut:
			outs++
		default:
			continue
		}
		matched = append(matched, e)
	}

	if ins != outs {
		return "", ErrUnequalInOut
	}

	total := 0
	for _, e := range matched {
		m, err := minutesOfDay(e.Time)
		if err != nil {
			return "", fmt.Errorf("entry %s %s: %w", e.Date, e.Time, err)
		}
		if e.Action == ActionIn {
			total -= m
		} else {
			total += m
		}
	}

	return FormatMinutes(total), nil
}
