package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nexidian/gocliselect"
	"gopkg.in/yaml.v3"
)

var errAborted = errors.New("aborted")

type App struct {
	cfg    *Config
	log    *Logger
	repo   *Repo
	ledger *Ledger

	now         func() time.Time
	in          *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
}

func NewApp() *App {
	return &App{
		now:    time.Now,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
		log:    DiscardLogger(),
	}
}

// Open loads the configuration, prepares the directories and the database
// and makes sure the current month has a partition.
func (a *App) Open(ctx context.Context, configDir string, verbose bool, in io.Reader, out, errOut io.Writer) error {
	cfg, err := LoadConfig(configDir)
	if err != nil {
		return err
	}

	level, _ := ParseLogLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	a.log = NewLogger(LogConfig{Level: level, Component: "cxz", Output: errOut})

	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	repo, err := NewRepo(cfg.Database, a.log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.repo = repo
	a.ledger = NewLedger(repo, LedgerConfig{Now: a.now()})
	a.in = bufio.NewReader(in)
	a.out = out
	a.errOut = errOut
	a.interactive = isTerminal(in)

	created, err := repo.CreatePartition(ctx, a.ledger.DefaultPartition())
	if err != nil {
		return err
	}
	if created {
		a.log.Info("created partition for current month", "partition", a.ledger.DefaultPartition())
	}

	return nil
}

func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

// Clock records an in, out or task entry. A nil note switches to
// interactive mode, which also asks for date and time.
func (a *App) Clock(ctx context.Context, action Action, note *string, date, clock string) error {
	var n string
	if note == nil {
		var err error
		if n, err = a.prompt("Note", ""); err != nil {
			return err
		}
		if n == "" {
			return fmt.Errorf("note cannot be empty")
		}
		if date == "" {
			if date, err = a.prompt("Date (YYYY-MM-DD)", a.ledger.Today()); err != nil {
				return err
			}
		}
		if clock == "" {
			if clock, err = a.prompt("Time (HH:MM)", a.ledger.Now().Format(clockLayout)); err != nil {
				return err
			}
		}
	} else {
		n = *note
	}

	e, err := a.ledger.AddEntry(ctx, "", n, action, date, clock)
	if err != nil {
		return err
	}

	switch action {
	case ActionIn:
		fmt.Fprintf(a.out, "Clocked in at %s on %s: %s\n", e.Time, e.Date, e.Note)
	case ActionOut:
		fmt.Fprintf(a.out, "Clocked out at %s on %s: %s\n", e.Time, e.Date, e.Note)
	default:
		fmt.Fprintf(a.out, "Task recorded at %s on %s: %s\n", e.Time, e.Date, e.Note)
	}
	return nil
}

// Show prints every entry of a month.
func (a *App) Show(ctx context.Context, month, year string) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}
	title := partitionTitle(partition)

	entries, err := a.repo.ReadAllRows(ctx, partition)
	if errors.Is(err, ErrPartitionNotFound) {
		fmt.Fprintf(a.out, "No records for %s, the month does not exist.\n", title)
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No entries yet for %s.\n", title)
		return nil
	}

	fmt.Fprintf(a.out, "Clock Records for %s\n", title)
	headers, rows := entryRows(entries, false)
	PrintTable(a.out, headers, rows, nil)
	return nil
}

// Sum prints the time clocked against a note in a month.
func (a *App) Sum(ctx context.Context, note, month, year string) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}

	if note == "" {
		if note, err = a.prompt("Note", ""); err != nil {
			return err
		}
	}

	total, err := a.ledger.SummarizeDuration(ctx, note, partition)
	switch {
	case errors.Is(err, ErrUnequalInOut):
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return nil
	case errors.Is(err, ErrPartitionNotFound):
		return fmt.Errorf("no records for %s", partitionTitle(partition))
	case err != nil:
		return err
	}

	fmt.Fprintln(a.out, total)
	return nil
}

// Status prints today's clocking status.
func (a *App) Status(ctx context.Context) error {
	status, err := a.ledger.StatusForDate(ctx, a.ledger.Today(), a.ledger.DefaultPartition())
	if err != nil {
		return err
	}

	switch status {
	case StatusIn:
		fmt.Fprintln(a.out, "Found a clock-in entry for today")
	case StatusOut:
		fmt.Fprintln(a.out, "Found a clock-out entry for today")
	default:
		fmt.Fprintln(a.out, "No clocking entry found for today")
	}
	return nil
}

// Delete removes one entry of a month, chosen by its line number in the
// numbered listing. Line 0 asks for it.
func (a *App) Delete(ctx context.Context, month, year string, line int, force bool) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}
	title := partitionTitle(partition)

	entries, err := a.repo.ReadAllRows(ctx, partition)
	if err != nil && !errors.Is(err, ErrPartitionNotFound) {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No records found for %s to delete.\n", title)
		return nil
	}

	if line == 0 {
		if line, err = a.chooseLine(entries, title); err != nil {
			return err
		}
	}
	if line < 1 || line > len(entries) {
		return fmt.Errorf("invalid line number %d", line)
	}

	if !force {
		ok, err := a.confirm(fmt.Sprintf("Are you sure you want to delete entry %d?", line))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	deleted, err := a.repo.DeleteRowByID(ctx, partition, entries[line-1].ID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("entry %d no longer exists", line)
	}

	fmt.Fprintf(a.out, "Entry %d deleted successfully.\n", line)
	return nil
}

func (a *App) chooseLine(entries []Entry, title string) (int, error) {
	if a.interactive {
		menu := gocliselect.NewMenu(fmt.Sprintf("Select the entry to delete from %s", title))
		for i, e := range entries {
			menu.AddItem(fmt.Sprintf("%s %s %-4s %s", e.Date, e.Time, e.Action, e.Note), i+1)
		}
		return menuLine(menu.Display())
	}

	fmt.Fprintf(a.out, "Clock Records for %s\n", title)
	headers, rows := entryRows(entries, true)
	PrintTable(a.out, headers, rows, nil)

	answer, err := a.prompt("Enter the line number of the entry you want to delete", "")
	if err != nil {
		return 0, err
	}
	line, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("invalid line number %q", answer)
	}
	return line, nil
}

// menuLine turns a menu selection into a line number. Escape yields an
// empty choice and counts as aborting.
func menuLine(choice any, err error) (int, error) {
	if err != nil {
		return 0, fmt.Errorf("failed to display menu: %w", err)
	}
	switch v := choice.(type) {
	case int:
		return v, nil
	case string:
		if v == "" {
			return 0, errAborted
		}
		line, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid line number %q", v)
		}
		return line, nil
	}
	return 0, errAborted
}

// Edit opens a month in the external editor and stores the result.
func (a *App) Edit(ctx context.Context, month, year, editor string) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}
	if editor == "" {
		editor = a.cfg.Editor
	}

	n, err := NewBulkEditor(a.repo, a.log, os.Stdin, a.out, a.errOut).Edit(ctx, partition, editor)
	if errors.Is(err, ErrPartitionNotFound) {
		return fmt.Errorf("no records for %s", partitionTitle(partition))
	}
	if err != nil {
		return fmt.Errorf("table %s left unchanged: %w", partition, err)
	}

	fmt.Fprintf(a.out, "Table %s updated (%d entries)\n", partition, n)
	return nil
}

// +----------------------+
// |                      |
// |    Config Commands   |
// |                      |
// +----------------------+

func (a *App) PrintDataDir() {
	fmt.Fprintln(a.out, a.cfg.DataDir)
}

func (a *App) PrintConfigPath() {
	fmt.Fprintln(a.out, ConfigPath(a.cfg.ConfigDir))
}

func (a *App) ShowConfig() error {
	data, err := yaml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(a.out, string(data))
	return nil
}

func (a *App) ShowTables(ctx context.Context) error {
	partitions, err := a.repo.ListPartitions(ctx)
	if err != nil {
		return err
	}
	if len(partitions) == 0 {
		fmt.Fprintln(a.out, "No tables found.")
		return nil
	}

	rows := make([][]string, 0, len(partitions))
	for _, p := range partitions {
		rows = append(rows, []string{p, partitionTitle(p)})
	}
	PrintTable(a.out, []string{"Table Name", "Month"}, rows, nil)
	return nil
}

func (a *App) CreateTable(ctx context.Context, month, year string) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}

	created, err := a.repo.CreatePartition(ctx, partition)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(a.out, "Table %s created\n", partition)
	} else {
		fmt.Fprintf(a.out, "Table %s already exists\n", partition)
	}
	return nil
}

func (a *App) DropTable(ctx context.Context, month, year string, force bool) error {
	partition, err := ResolvePartition(month, year, a.ledger.Now())
	if err != nil {
		return err
	}

	if !force {
		ok, err := a.confirm(fmt.Sprintf("You sure you want to delete all entries for %s?", partitionTitle(partition)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	dropped, err := a.repo.DropPartition(ctx, partition)
	if err != nil {
		return err
	}
	if dropped {
		fmt.Fprintf(a.out, "Table %s dropped\n", partition)
	} else {
		fmt.Fprintf(a.out, "Could not drop table %s, it does not exist\n", partition)
	}
	return nil
}

// +---------------+
// |               |
// |    Prompts    |
// |               |
// +---------------+

// prompt reads one line; empty input selects def.
func (a *App) prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(a.out, "%s: ", label)
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		if errors.Is(err, io.EOF) && def == "" {
			return "", errAborted
		}
		return def, nil
	}
	return line, nil
}

func (a *App) confirm(question string) (bool, error) {
	answer, err := a.prompt(question+" [y/N]", "")
	if errors.Is(err, errAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
